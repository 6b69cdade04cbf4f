package booking

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

var hundred = decimal.NewFromInt(100) //nolint:gomnd

// Nights counts the nights between check-in and check-out. The absolute
// difference is used and the result never drops below one, so an equal or
// inverted range is priced as a single night.
func Nights(r DateRange) int {
	diff := r.CheckOut.Sub(r.CheckIn.Time)
	if diff < 0 {
		diff = -diff
	}

	nights := int(math.Ceil(float64(diff) / float64(day)))
	if nights < 1 {
		return 1
	}

	return nights
}

// ComputeTotal prices a stay. A nil room or a range with a missing date
// gives a zero quote. An inactive promo is ignored.
func ComputeTotal(room *RoomOffering, r DateRange, promo *PromoCode) Quote {
	//nolint:exhaustruct
	quote := Quote{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}

	if room == nil || r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return quote
	}

	quote.Nights = Nights(r)
	quote.Subtotal = decimal.NewFromInt(room.Price).Mul(decimal.NewFromInt(int64(quote.Nights)))

	if promo != nil && promo.Active {
		quote.Discount = quote.Subtotal.
			Mul(decimal.NewFromInt(int64(promo.DiscountPercent))).
			Div(hundred).
			Round(2) //nolint:gomnd
	}

	quote.Total = quote.Subtotal.Sub(quote.Discount)

	return quote
}
