package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/inventory"
)

// DeepLink carries the raw query of a shared booking URL. Every field is
// optional.
type DeepLink struct {
	RoomID   string
	CheckIn  string
	CheckOut string
	Guests   string
}

// NewFromDeepLink prefills a wizard from a link. Dates in the past are moved
// to today, a departure that is missing or not after arrival becomes the next
// day, and a known room skips straight to the guest details.
func NewFromDeepLink(ctx context.Context, deps Deps, link DeepLink) (*Wizard, error) {
	w := New(deps)
	today := booking.DateOf(w.deps.Now())

	checkIn, err := booking.ParseDate(strings.TrimSpace(link.CheckIn))
	if err != nil || checkIn.IsZero() || checkIn.Before(today) {
		checkIn = today
	}

	checkOut, err := booking.ParseDate(strings.TrimSpace(link.CheckOut))
	if err != nil || checkOut.IsZero() || !checkOut.After(checkIn) {
		checkOut = checkIn.AddDays(1)
	}

	w.draft.Dates = booking.DateRange{CheckIn: checkIn, CheckOut: checkOut}

	if guests, err := strconv.Atoi(strings.TrimSpace(link.Guests)); err == nil && guests >= 1 {
		w.draft.Guest.Guests = guests
	}

	roomID := strings.TrimSpace(link.RoomID)
	if roomID == "" {
		return w, nil
	}

	room, err := w.deps.Rooms.Get(ctx, roomID)
	if errors.Is(err, inventory.ErrRoomNotFound) {
		w.deps.L.LogWarnf("Deep link names unknown room %v, starting at room selection", roomID)

		return w, nil
	}

	if err != nil {
		return nil, fmt.Errorf("deep link room %v: %w", roomID, err)
	}

	w.draft.Room = room
	w.step = StepGuestDetails

	return w, nil
}
