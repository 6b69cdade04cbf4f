package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstrong/resort/internal/booking"
)

type roomRow struct {
	ID          string   `gorm:"primaryKey;size:64"`
	Position    int64    `gorm:"index;not null"`
	Title       string   `gorm:"size:200;not null"`
	Description string   `gorm:"type:text"`
	Price       int64    `gorm:"not null"`
	Capacity    int      `gorm:"not null"`
	Size        int
	BedType     string   `gorm:"size:50"`
	Type        string   `gorm:"size:20;not null"`
	Amenities   []string `gorm:"serializer:json;type:text"`
	Images      []string `gorm:"serializer:json;type:text"`
	Featured    bool
}

func (roomRow) TableName() string { return "rooms" }

type promoRow struct {
	ID              string `gorm:"primaryKey;size:64"`
	Position        int64  `gorm:"index;not null"`
	Code            string `gorm:"size:50;uniqueIndex;not null"`
	DiscountPercent int    `gorm:"not null"`
	Active          bool   `gorm:"not null"`
}

func (promoRow) TableName() string { return "promo_codes" }

type bookingRow struct {
	ID            string          `gorm:"primaryKey;size:16"`
	Position      int64           `gorm:"index;not null"`
	RoomID        string          `gorm:"size:64;index;not null"`
	RoomTitle     string          `gorm:"size:200"`
	CustomerName  string          `gorm:"size:200;not null"`
	CustomerEmail string          `gorm:"size:200;not null"`
	CustomerPhone string          `gorm:"size:32"`
	Guests        int             `gorm:"not null"`
	CheckIn       string          `gorm:"size:10;not null"`
	CheckOut      string          `gorm:"size:10;not null"`
	PromoCode     string          `gorm:"size:50"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Status        string          `gorm:"size:20;index;not null"`
	PaymentStatus string          `gorm:"size:20;not null"`
	PaymentMethod string          `gorm:"size:20;not null"`
	PaymentRef    string          `gorm:"size:64"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (bookingRow) TableName() string { return "bookings" }

// Position is assigned on first insert and never updated.
var (
	roomColumns = []string{
		"title", "description", "price", "capacity", "size", "bed_type", "type", "amenities", "images", "featured",
	}
	promoColumns   = []string{"code", "discount_percent", "active"}
	bookingColumns = []string{
		"room_id", "room_title", "customer_name", "customer_email", "customer_phone", "guests",
		"check_in", "check_out", "promo_code", "subtotal", "discount", "total",
		"status", "payment_status", "payment_method", "payment_ref", "updated_at",
	}
)

func toRoomRow(r *booking.RoomOffering) *roomRow {
	return &roomRow{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Capacity:    r.Capacity,
		Size:        r.Size,
		BedType:     r.BedType,
		Type:        string(r.Type),
		Amenities:   r.Amenities,
		Images:      r.Images,
		Featured:    r.Featured,
	}
}

func (r *roomRow) toRoom() *booking.RoomOffering {
	return &booking.RoomOffering{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Capacity:    r.Capacity,
		Size:        r.Size,
		BedType:     r.BedType,
		Type:        booking.RoomType(r.Type),
		Amenities:   r.Amenities,
		Images:      r.Images,
		Featured:    r.Featured,
	}
}

func toPromoRow(p *booking.PromoCode) *promoRow {
	return &promoRow{
		ID:              p.ID,
		Code:            p.Code,
		DiscountPercent: p.DiscountPercent,
		Active:          p.Active,
	}
}

func (p *promoRow) toPromo() *booking.PromoCode {
	return &booking.PromoCode{
		ID:              p.ID,
		Code:            p.Code,
		DiscountPercent: p.DiscountPercent,
		Active:          p.Active,
	}
}

func toBookingRow(b *booking.Booking) *bookingRow {
	return &bookingRow{
		ID:            b.ID,
		RoomID:        b.RoomID,
		RoomTitle:     b.RoomTitle,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		Guests:        b.Guests,
		CheckIn:       b.CheckIn.String(),
		CheckOut:      b.CheckOut.String(),
		PromoCode:     b.PromoCode,
		Subtotal:      b.Subtotal,
		Discount:      b.Discount,
		Total:         b.Total,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		PaymentMethod: string(b.PaymentMethod),
		PaymentRef:    b.PaymentRef,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (r *bookingRow) toBooking() (*booking.Booking, error) {
	checkIn, err := booking.ParseDate(r.CheckIn)
	if err != nil {
		return nil, err
	}

	checkOut, err := booking.ParseDate(r.CheckOut)
	if err != nil {
		return nil, err
	}

	return &booking.Booking{
		ID:            r.ID,
		RoomID:        r.RoomID,
		RoomTitle:     r.RoomTitle,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		Guests:        r.Guests,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PromoCode:     r.PromoCode,
		Subtotal:      r.Subtotal,
		Discount:      r.Discount,
		Total:         r.Total,
		Status:        booking.Status(r.Status),
		PaymentStatus: booking.PaymentStatus(r.PaymentStatus),
		PaymentMethod: booking.PaymentMethod(r.PaymentMethod),
		PaymentRef:    r.PaymentRef,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}, nil
}
