package booking

import (
	"fmt"
	"strings"
)

const minPhoneLength = 10

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldCheckIn  = "checkIn"
	FieldCheckOut = "checkOut"
	FieldGuests   = "guests"
	FieldPromo    = "promo"
)

type ValidationPolicy struct {
	// RejectInvertedRange refuses a check-out that is not after check-in.
	// Pricing still treats such ranges as one night.
	RejectInvertedRange bool
}

// ValidateGuestStep runs every guest-step rule and reports all violations at
// once. A nil room skips the capacity rule.
func ValidateGuestStep(r DateRange, g GuestDetails, room *RoomOffering, policy ValidationPolicy) FieldErrors {
	errs := make(FieldErrors)

	if strings.TrimSpace(g.Name) == "" {
		errs[FieldName] = "Name is required"
	}

	if email := strings.TrimSpace(g.Email); email == "" || !strings.Contains(email, "@") {
		errs[FieldEmail] = "Valid email is required"
	}

	if phone := strings.TrimSpace(g.Phone); phone == "" || len(phone) < minPhoneLength {
		errs[FieldPhone] = "Valid 10-digit phone required"
	}

	if r.CheckIn.IsZero() {
		errs[FieldCheckIn] = "Check-in required"
	}

	if r.CheckOut.IsZero() {
		errs[FieldCheckOut] = "Check-out required"
	} else if policy.RejectInvertedRange && !r.CheckIn.IsZero() && !r.CheckOut.After(r.CheckIn) {
		errs[FieldCheckOut] = "Check-out must be after check-in"
	}

	switch {
	case g.Guests < 1:
		errs[FieldGuests] = "At least 1 guest required"
	case room != nil && g.Guests > room.Capacity:
		errs[FieldGuests] = fmt.Sprintf("Max capacity is %d", room.Capacity)
	}

	return errs
}
