package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avstrong/resort/internal/boost"
	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
	"github.com/avstrong/resort/internal/payment"
)

var (
	ErrInvalidTransition = errors.New("action not allowed at the current step")
	ErrTerminal          = errors.New("booking is already confirmed")
	ErrPaymentMethod     = errors.New("unknown payment method")
	ErrPaymentDeclined   = errors.New("payment declined")
	ErrPaymentTimedOut   = errors.New("payment timed out")
)

type roomSource interface {
	Get(ctx context.Context, id string) (*booking.RoomOffering, error)
}

type promos interface {
	Lookup(ctx context.Context, code string) (*booking.PromoCode, error)
}

type authorizer interface {
	Authorize(ctx context.Context, req payment.Request) (*payment.Authorization, error)
}

type placer interface {
	Place(ctx context.Context, b *booking.Booking) (*booking.Booking, error)
}

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

// Recorder observes wizard progress. A nil Recorder is allowed.
type Recorder interface {
	StepChanged(from, to string)
	ValidationFailed(field string)
	BookingConfirmed(method string)
}

type Deps struct {
	L        *logger.Logger
	Rooms    roomSource
	Promos   promos
	Payments authorizer
	Bookings placer
	IDs      idGenerator
	Recorder Recorder
	Policy   booking.ValidationPolicy
	Now      func() time.Time
}

// Draft is the data collected so far.
type Draft struct {
	Room      *booking.RoomOffering
	Dates     booking.DateRange
	Guest     booking.GuestDetails
	Promo     *booking.PromoCode
	BookingID string
	Booking   *booking.Booking
	Errors    booking.FieldErrors
}

// Wizard drives one guest through room selection, details, payment and
// confirmation. It is safe for concurrent use.
type Wizard struct {
	mu    sync.Mutex
	deps  Deps
	step  Step
	draft Draft
}

func New(deps Deps) *Wizard {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	if deps.L == nil {
		deps.L = logger.Nop()
	}

	today := booking.DateOf(deps.Now())

	//nolint:exhaustruct
	return &Wizard{
		deps: deps,
		step: StepSelectRoom,
		draft: Draft{
			Dates:  booking.DateRange{CheckIn: today, CheckOut: today.AddDays(1)},
			Guest:  booking.GuestDetails{Guests: 1},
			Errors: make(booking.FieldErrors),
		},
	}
}

func (w *Wizard) moveTo(step Step) {
	if w.step == step {
		return
	}

	if w.deps.Recorder != nil {
		w.deps.Recorder.StepChanged(w.step.String(), step.String())
	}

	w.deps.L.LogDebugf("Wizard step %v -> %v", w.step, step)
	w.step = step
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.step
}

// SelectRoom picks a room and moves on to the guest details.
func (w *Wizard) SelectRoom(ctx context.Context, roomID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepConfirmed {
		return ErrTerminal
	}

	if w.step != StepSelectRoom {
		return fmt.Errorf("select room at %v: %w", w.step, ErrInvalidTransition)
	}

	room, err := w.deps.Rooms.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("select room %v: %w", roomID, err)
	}

	w.draft.Room = room
	w.moveTo(StepGuestDetails)

	return nil
}

// ChangeCheckIn sets a new arrival date and resets departure to the day after.
func (w *Wizard) ChangeCheckIn(date booking.Date) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepConfirmed {
		return ErrTerminal
	}

	if w.step != StepGuestDetails {
		return fmt.Errorf("change check-in at %v: %w", w.step, ErrInvalidTransition)
	}

	if date.IsZero() {
		return nil
	}

	w.draft.Dates = booking.DateRange{CheckIn: date, CheckOut: date.AddDays(1)}
	delete(w.draft.Errors, booking.FieldCheckIn)
	delete(w.draft.Errors, booking.FieldCheckOut)

	return nil
}

// SubmitDetails validates the guest step. On failure the wizard stays put and
// the returned error is a *booking.InputError carrying every violation.
func (w *Wizard) SubmitDetails(dates booking.DateRange, guest booking.GuestDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepConfirmed {
		return ErrTerminal
	}

	if w.step != StepGuestDetails {
		return fmt.Errorf("submit details at %v: %w", w.step, ErrInvalidTransition)
	}

	w.draft.Dates = dates
	w.draft.Guest = guest

	errs := booking.ValidateGuestStep(dates, guest, w.draft.Room, w.deps.Policy)
	w.draft.Errors = errs

	if len(errs) > 0 {
		if w.deps.Recorder != nil {
			for field := range errs {
				w.deps.Recorder.ValidationFailed(field)
			}
		}

		return errs.Err()
	}

	w.moveTo(StepPayment)

	return nil
}

// ApplyPromo looks the code up and attaches it. An unknown or inactive code
// keeps whatever promo was applied before and records a promo field error.
func (w *Wizard) ApplyPromo(ctx context.Context, code string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepConfirmed {
		return ErrTerminal
	}

	promo, err := w.deps.Promos.Lookup(ctx, code)
	if errors.Is(err, boost.ErrInvalidPromo) {
		w.draft.Errors[booking.FieldPromo] = err.Error()

		return err
	}

	if err != nil {
		return fmt.Errorf("apply promo: %w", err)
	}

	w.draft.Promo = promo
	delete(w.draft.Errors, booking.FieldPromo)

	return nil
}

func (w *Wizard) RemovePromo() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepConfirmed {
		return ErrTerminal
	}

	w.draft.Promo = nil
	delete(w.draft.Errors, booking.FieldPromo)

	return nil
}

func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepGuestDetails:
		w.moveTo(StepSelectRoom)
	case StepPayment:
		w.moveTo(StepGuestDetails)
	case StepConfirmed:
		return ErrTerminal
	case StepSelectRoom:
		return fmt.Errorf("back from %v: %w", w.step, ErrInvalidTransition)
	default:
		return fmt.Errorf("back from %v: %w", w.step, ErrInvalidTransition)
	}

	return nil
}

// Pay settles the draft and persists the booking. The booking id is fixed on
// the first attempt so retries after a decline, timeout or storage failure
// never produce a second record. Paying again once confirmed returns the
// stored booking.
func (w *Wizard) Pay(ctx context.Context, method booking.PaymentMethod) (*booking.Booking, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepConfirmed {
		c := *w.draft.Booking

		return &c, nil
	}

	if w.step != StepPayment {
		return nil, fmt.Errorf("pay at %v: %w", w.step, ErrInvalidTransition)
	}

	if !method.Valid() {
		return nil, fmt.Errorf("%v: %w", method, ErrPaymentMethod)
	}

	if err := w.refreshPromo(ctx); err != nil {
		return nil, err
	}

	if w.draft.BookingID == "" {
		id, err := w.deps.IDs.GetID(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", booking.ErrNextID, err)
		}

		w.draft.BookingID = id
	}

	b := w.compose(method)

	if method == booking.PaymentOnline {
		if err := w.authorize(ctx, b); err != nil {
			return nil, err
		}
	}

	placed, err := w.deps.Bookings.Place(ctx, b)
	if err != nil {
		w.deps.L.LogErrorf("Booking %v not stored, staying at payment: %v", b.ID, err)

		return nil, fmt.Errorf("place booking %v: %w", b.ID, err)
	}

	w.draft.Booking = placed
	w.moveTo(StepConfirmed)

	if w.deps.Recorder != nil {
		w.deps.Recorder.BookingConfirmed(string(method))
	}

	c := *placed

	return &c, nil
}

// refreshPromo reads the applied code again so a code deactivated since it was
// applied stops discounting. The guest sees the new total before paying.
func (w *Wizard) refreshPromo(ctx context.Context) error {
	if w.draft.Promo == nil {
		return nil
	}

	code := w.draft.Promo.Code

	promo, err := w.deps.Promos.Lookup(ctx, code)
	if errors.Is(err, boost.ErrInvalidPromo) {
		w.deps.L.LogWarnf("Promo %v is no longer valid, removed from the draft", code)
		w.draft.Promo = nil
		w.draft.Errors[booking.FieldPromo] = err.Error()

		return fmt.Errorf("promo %v: %w", code, err)
	}

	if err != nil {
		return fmt.Errorf("refresh promo %v: %w", code, err)
	}

	w.draft.Promo = promo

	return nil
}

func (w *Wizard) compose(method booking.PaymentMethod) *booking.Booking {
	quote := booking.ComputeTotal(w.draft.Room, w.draft.Dates, w.draft.Promo)

	b := &booking.Booking{
		ID:            w.draft.BookingID,
		CheckIn:       w.draft.Dates.CheckIn,
		CheckOut:      w.draft.Dates.CheckOut,
		CustomerName:  w.draft.Guest.Name,
		CustomerEmail: w.draft.Guest.Email,
		CustomerPhone: w.draft.Guest.Phone,
		Guests:        w.draft.Guest.Guests,
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Total:         quote.Total,
		Status:        booking.StatusConfirmed,
		PaymentStatus: booking.PaymentUnpaid,
		PaymentMethod: method,
	}

	if w.draft.Room != nil {
		b.RoomID = w.draft.Room.ID
		b.RoomTitle = w.draft.Room.Title
	}

	if w.draft.Promo != nil && w.draft.Promo.Active {
		b.PromoCode = w.draft.Promo.Code
	}

	return b
}

func (w *Wizard) authorize(ctx context.Context, b *booking.Booking) error {
	// Nothing to charge after a full discount.
	if !b.Total.IsPositive() {
		b.PaymentStatus = booking.PaymentPaid

		return nil
	}

	auth, err := w.deps.Payments.Authorize(ctx, payment.Request{BookingID: b.ID, Amount: b.Total})

	switch {
	case errors.Is(err, payment.ErrDeclined):
		return fmt.Errorf("booking %v: %w", b.ID, ErrPaymentDeclined)
	case errors.Is(err, payment.ErrTimedOut):
		return fmt.Errorf("booking %v: %w", b.ID, ErrPaymentTimedOut)
	case err != nil:
		return fmt.Errorf("authorize booking %v: %w", b.ID, err)
	}

	b.PaymentStatus = booking.PaymentPaid
	b.PaymentRef = auth.ID

	return nil
}

// View is a read-only snapshot for rendering.
type View struct {
	Step      Step                  `json:"step"`
	StepName  string                `json:"step_name"`
	Room      *booking.RoomOffering `json:"room,omitempty"`
	Dates     booking.DateRange     `json:"dates"`
	Guest     booking.GuestDetails  `json:"guest"`
	PromoCode string                `json:"promo_code,omitempty"`
	Quote     booking.Quote         `json:"quote"`
	Errors    map[string]string     `json:"errors,omitempty"`
	BookingID string                `json:"booking_id,omitempty"`
	Booking   *booking.Booking      `json:"booking,omitempty"`
}

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Step:      w.step,
		StepName:  w.step.String(),
		Dates:     w.draft.Dates,
		Guest:     w.draft.Guest,
		Quote:     booking.ComputeTotal(w.draft.Room, w.draft.Dates, w.draft.Promo),
		BookingID: w.draft.BookingID,
	}

	if w.draft.Room != nil {
		room := *w.draft.Room
		v.Room = &room
	}

	if w.draft.Promo != nil {
		v.PromoCode = w.draft.Promo.Code
	}

	if len(w.draft.Errors) > 0 {
		v.Errors = make(map[string]string, len(w.draft.Errors))
		for k, msg := range w.draft.Errors {
			v.Errors[k] = msg
		}
	}

	if w.draft.Booking != nil {
		b := *w.draft.Booking
		v.Booking = &b
	}

	return v
}
