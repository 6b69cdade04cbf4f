package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

//nolint:gochecknoinits
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type RoomType string

const (
	RoomTypeStandard  RoomType = "Standard"
	RoomTypeDeluxe    RoomType = "Deluxe"
	RoomTypeSuite     RoomType = "Suite"
	RoomTypePenthouse RoomType = "Penthouse"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomTypeStandard, RoomTypeDeluxe, RoomTypeSuite, RoomTypePenthouse:
		return true
	default:
		return false
	}
}

type RoomOffering struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Capacity    int      `json:"capacity"`
	Size        int      `json:"size"`
	BedType     string   `json:"bed_type"`
	Type        RoomType `json:"type"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
	Featured    bool     `json:"featured"`
}

type PromoCode struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
	Active          bool   `json:"active"`
}

type DateRange struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

type GuestDetails struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Guests int    `json:"guests"`
}

type Quote struct {
	Nights   int             `json:"nights"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	default:
		return false
	}
}

// Active reports whether the booking still holds the room.
func (s Status) Active() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

type PaymentMethod string

const (
	PaymentOnline     PaymentMethod = "online"
	PaymentAtProperty PaymentMethod = "pay-at-property"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentAtProperty
}

type Booking struct {
	ID            string          `json:"id"`
	RoomID        string          `json:"room_id"`
	RoomTitle     string          `json:"room_title"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	Guests        int             `json:"guests"`
	CheckIn       Date            `json:"check_in"`
	CheckOut      Date            `json:"check_out"`
	PromoCode     string          `json:"promo_code,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

type EventType string

const (
	EventConfirmed     EventType = "booking.confirmed"
	EventStatusChanged EventType = "booking.status_changed"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	BookingID string    `json:"booking_id"`
	Booking   Booking   `json:"booking"`
	CreatedAt time.Time `json:"created_at"`
}

type Dashboard struct {
	TotalBookings  int              `json:"total_bookings"`
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	OccupancyRate  int              `json:"occupancy_rate"`
	MonthlyRevenue []MonthlyRevenue `json:"monthly_revenue"`
	RecentBookings []*Booking       `json:"recent_bookings"`
}

type MonthlyRevenue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}
