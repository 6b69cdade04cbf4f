package migration

import (
	"context"
	"fmt"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

type storage interface {
	ListRooms(ctx context.Context) ([]*booking.RoomOffering, error)
	SaveRoom(ctx context.Context, room *booking.RoomOffering) error
	ListPromos(ctx context.Context) ([]*booking.PromoCode, error)
	SavePromo(ctx context.Context, promo *booking.PromoCode) error
}

const imageURL = "https://images.unsplash.com/photo-%v?q=80&w=1000&auto=format&fit=crop"

func images(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, fmt.Sprintf(imageURL, id))
	}

	return out
}

//nolint:gomnd
func seedRooms() []*booking.RoomOffering {
	return []*booking.RoomOffering{
		{
			ID:          "1",
			Title:       "Ocean View Deluxe",
			Description: "Wake up to the sound of waves in this spacious deluxe room featuring a private balcony and premium amenities.",
			Price:       12000,
			Capacity:    2,
			Size:        450,
			BedType:     "King",
			Type:        booking.RoomTypeDeluxe,
			Amenities:   []string{"wifi", "ac", "tv", "minibar", "balcony"},
			Images:      images("1571003123894-1ac16e790554", "1582719478250-c89cae4dc85b"),
			Featured:    true,
		},
		{
			ID:          "2",
			Title:       "Maharaja Presidential Suite",
			Description: "Experience royalty with a separate living area, private jacuzzi, panoramic views, and personal butler service.",
			Price:       45000,
			Capacity:    4,
			Size:        1200,
			BedType:     "2 King",
			Type:        booking.RoomTypePenthouse,
			Amenities:   []string{"wifi", "ac", "tv", "minibar", "jacuzzi", "kitchen", "butler"},
			Images:      images("1631049307264-da0ec9d70304", "1590490360182-c33d57733427"),
			Featured:    true,
		},
		{
			ID:          "3",
			Title:       "Garden Retreat",
			Description: "A quiet sanctuary facing our award-winning botanical gardens. Perfect for reading and relaxation.",
			Price:       8500,
			Capacity:    2,
			Size:        350,
			BedType:     "Queen",
			Type:        booking.RoomTypeStandard,
			Amenities:   []string{"wifi", "ac", "coffee"},
			Images:      images("1566665797739-1674de7a421a"),
		},
		{
			ID:          "4",
			Title:       "Executive Suite",
			Description: "Designed for the modern traveler, featuring a dedicated workspace and lounge area.",
			Price:       18000,
			Capacity:    3,
			Size:        600,
			BedType:     "King",
			Type:        booking.RoomTypeSuite,
			Amenities:   []string{"wifi", "ac", "tv", "workspace", "lounge"},
			Images:      images("1611892440504-42a792e24d32"),
			Featured:    true,
		},
	}
}

//nolint:gomnd
func seedPromos() []*booking.PromoCode {
	return []*booking.PromoCode{
		{ID: "1", Code: "WELCOME20", DiscountPercent: 20, Active: true},
		{ID: "2", Code: "SUMMER10", DiscountPercent: 10, Active: true},
	}
}

// Up seeds the starter catalog and promo codes. Each collection is only
// seeded while empty, so running it against a live store is a no-op.
func Up(ctx context.Context, l *logger.Logger, storage storage) error {
	rooms, err := storage.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	if len(rooms) == 0 {
		for _, room := range seedRooms() {
			if err := storage.SaveRoom(ctx, room); err != nil {
				return fmt.Errorf("seed room %v: %w", room.ID, err)
			}
		}

		l.LogInfo("Seeded %d rooms", len(seedRooms()))
	}

	promos, err := storage.ListPromos(ctx)
	if err != nil {
		return fmt.Errorf("list promos: %w", err)
	}

	if len(promos) == 0 {
		for _, promo := range seedPromos() {
			if err := storage.SavePromo(ctx, promo); err != nil {
				return fmt.Errorf("seed promo %v: %w", promo.Code, err)
			}
		}

		l.LogInfo("Seeded %d promo codes", len(seedPromos()))
	}

	return nil
}
