// Package storagetest holds behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstrong/resort/internal/booking"
)

type Store interface {
	ListRooms(ctx context.Context) ([]*booking.RoomOffering, error)
	GetRoom(ctx context.Context, id string) (*booking.RoomOffering, error)
	SaveRoom(ctx context.Context, room *booking.RoomOffering) error
	DeleteRoom(ctx context.Context, id string) error
	ListPromos(ctx context.Context) ([]*booking.PromoCode, error)
	GetPromo(ctx context.Context, id string) (*booking.PromoCode, error)
	FindPromoByCode(ctx context.Context, code string) (*booking.PromoCode, error)
	SavePromo(ctx context.Context, promo *booking.PromoCode) error
	DeletePromo(ctx context.Context, id string) error
	ListBookings(ctx context.Context) ([]*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	SaveBooking(ctx context.Context, b *booking.Booking) error
}

// Run checks a freshly emptied store.
func Run(t *testing.T, s Store) {
	t.Helper()

	t.Run("rooms", func(t *testing.T) { rooms(t, s) })
	t.Run("promos", func(t *testing.T) { promos(t, s) })
	t.Run("bookings", func(t *testing.T) { bookings(t, s) })
}

func rooms(t *testing.T, s Store) {
	ctx := context.Background()

	for _, room := range []*booking.RoomOffering{
		{ID: "r1", Title: "Ocean View Deluxe", Price: 12000, Capacity: 2, Type: booking.RoomTypeDeluxe, Amenities: []string{"wifi", "sea view"}},
		{ID: "r2", Title: "Garden Retreat", Price: 8500, Capacity: 2, Type: booking.RoomTypeStandard},
	} {
		if err := s.SaveRoom(ctx, room); err != nil {
			t.Fatalf("save room %v: %v", room.ID, err)
		}
	}

	if err := s.SaveRoom(ctx, &booking.RoomOffering{ID: "r1", Title: "Ocean View Deluxe", Price: 13000, Capacity: 2, Type: booking.RoomTypeDeluxe}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListRooms(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(list) != 2 || list[0].ID != "r1" || list[0].Price != 13000 || list[1].ID != "r2" {
		t.Fatalf("rooms = %+v", list)
	}

	if err := s.DeleteRoom(ctx, "r2"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetRoom(ctx, "r2"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Fatalf("deleted room: %v", err)
	}

	if err := s.DeleteRoom(ctx, "r2"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func promos(t *testing.T, s Store) {
	ctx := context.Background()

	if err := s.SavePromo(ctx, &booking.PromoCode{ID: "p1", Code: "WELCOME20", DiscountPercent: 20, Active: true}); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindPromoByCode(ctx, "welcome20")
	if err != nil || got.ID != "p1" || got.DiscountPercent != 20 || !got.Active {
		t.Fatalf("find: %+v, %v", got, err)
	}

	got.Active = false
	if err := s.SavePromo(ctx, got); err != nil {
		t.Fatal(err)
	}

	again, err := s.GetPromo(ctx, "p1")
	if err != nil || again.Active {
		t.Fatalf("toggle not stored: %+v, %v", again, err)
	}

	if _, err := s.FindPromoByCode(ctx, "SUMMER10"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Fatalf("missing code: %v", err)
	}

	if err := s.DeletePromo(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	if list, _ := s.ListPromos(ctx); len(list) != 0 {
		t.Fatalf("promos after delete = %+v", list)
	}
}

func bookings(t *testing.T, s Store) {
	ctx := context.Background()
	created := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"B1", "B2", "B3"} {
		b := &booking.Booking{
			ID:            id,
			RoomID:        "r1",
			RoomTitle:     "Ocean View Deluxe",
			CustomerName:  "Guest " + id,
			CustomerEmail: id + "@example.com",
			CustomerPhone: "9876543210",
			Guests:        2,
			CheckIn:       booking.NewDate(2024, time.June, 10+i),
			CheckOut:      booking.NewDate(2024, time.June, 12+i),
			Subtotal:      decimal.NewFromInt(24000),
			Discount:      decimal.RequireFromString("1851.75"),
			Total:         decimal.RequireFromString("22148.25"),
			Status:        booking.StatusConfirmed,
			PaymentStatus: booking.PaymentPaid,
			PaymentMethod: booking.PaymentOnline,
			CreatedAt:     created.Add(time.Duration(i) * time.Hour),
			UpdatedAt:     created.Add(time.Duration(i) * time.Hour),
		}

		if err := s.SaveBooking(ctx, b); err != nil {
			t.Fatalf("save %v: %v", id, err)
		}
	}

	b1, err := s.GetBooking(ctx, "B1")
	if err != nil {
		t.Fatal(err)
	}

	if !b1.Total.Equal(decimal.RequireFromString("22148.25")) || b1.CheckIn.String() != "2024-06-10" {
		t.Fatalf("round trip lost data: %+v", b1)
	}

	b1.Status = booking.StatusCancelled
	if err := s.SaveBooking(ctx, b1); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListBookings(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(list) != 3 || list[0].ID != "B1" || list[0].Status != booking.StatusCancelled || list[2].ID != "B3" {
		t.Fatalf("bookings = %+v", list)
	}

	if _, err := s.GetBooking(ctx, "B9"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Fatalf("missing booking: %v", err)
	}
}
