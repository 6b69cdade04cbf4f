package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstrong/resort/internal/boost"
	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/idgen/simple"
	"github.com/avstrong/resort/internal/idgen/token"
	"github.com/avstrong/resort/internal/inventory"
	"github.com/avstrong/resort/internal/logger"
	"github.com/avstrong/resort/internal/payment"
	"github.com/avstrong/resort/internal/storage/memory"
	"github.com/avstrong/resort/internal/wizard"
)

var fixedNow = time.Date(2024, time.May, 20, 9, 30, 0, 0, time.UTC)

type flakyStore struct {
	*memory.DB
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) setFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail = v
}

func (s *flakyStore) SaveBooking(ctx context.Context, b *booking.Booking) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()

	if fail {
		return errors.New("connection reset")
	}

	return s.DB.SaveBooking(ctx, b)
}

type countingRecorder struct {
	mu        sync.Mutex
	steps     []string
	invalid   map[string]int
	confirmed int
}

func (r *countingRecorder) StepChanged(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps = append(r.steps, from+">"+to)
}

func (r *countingRecorder) ValidationFailed(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.invalid == nil {
		r.invalid = make(map[string]int)
	}

	r.invalid[field]++
}

func (r *countingRecorder) BookingConfirmed(string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.confirmed++
}

type fixture struct {
	deps     wizard.Deps
	store    *flakyStore
	gateway  *payment.Gateway
	recorder *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	l := logger.Nop()
	db := memory.New(memory.Config{L: l})

	rooms := []*booking.RoomOffering{
		{ID: "1", Title: "Ocean View Deluxe", Price: 12000, Capacity: 2, Type: booking.RoomTypeDeluxe},
		{ID: "2", Title: "Maharaja Presidential Suite", Price: 45000, Capacity: 4, Type: booking.RoomTypePenthouse},
	}
	for _, room := range rooms {
		if err := db.SaveRoom(ctx, room); err != nil {
			t.Fatal(err)
		}
	}

	promos := []*booking.PromoCode{
		{ID: "p1", Code: "WELCOME20", DiscountPercent: 20, Active: true},
		{ID: "p2", Code: "OLD50", DiscountPercent: 50, Active: false},
	}
	for _, promo := range promos {
		if err := db.SavePromo(ctx, promo); err != nil {
			t.Fatal(err)
		}
	}

	store := &flakyStore{DB: db}
	now := func() time.Time { return fixedNow }
	recorder := &countingRecorder{}
	gateway := payment.New(payment.Conf{
		L:            l,
		DeclineAbove: decimal.NewFromInt(100000),
	}, simple.New(""))

	return &fixture{
		store:    store,
		gateway:  gateway,
		recorder: recorder,
		deps: wizard.Deps{
			L:        l,
			Rooms:    inventory.New(l, db, simple.New("R")),
			Promos:   boost.New(l, db, simple.New("P"), nil),
			Payments: gateway,
			Bookings: booking.New(l, store, simple.New("EV"), nil, booking.Conf{Now: now}),
			IDs:      token.New(9),
			Recorder: recorder,
			Now:      now,
		},
	}
}

func date(t *testing.T, s string) booking.Date {
	t.Helper()

	d, err := booking.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}

	return d
}

func validGuest() booking.GuestDetails {
	return booking.GuestDetails{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210", Guests: 2}
}

func toPayment(t *testing.T, w *wizard.Wizard, roomID, in, out string) {
	t.Helper()

	if err := w.SelectRoom(context.Background(), roomID); err != nil {
		t.Fatalf("select room: %v", err)
	}

	r := booking.DateRange{CheckIn: date(t, in), CheckOut: date(t, out)}
	if err := w.SubmitDetails(r, validGuest()); err != nil {
		t.Fatalf("submit details: %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	f := newFixture(t)
	v := wizard.New(f.deps).View()

	if v.Step != wizard.StepSelectRoom || v.Guest.Guests != 1 {
		t.Fatalf("unexpected start: %+v", v)
	}

	if v.Dates.CheckIn.String() != "2024-05-20" || v.Dates.CheckOut.String() != "2024-05-21" {
		t.Fatalf("dates: %v..%v", v.Dates.CheckIn, v.Dates.CheckOut)
	}
}

func TestNewFromDeepLink(t *testing.T) {
	tests := []struct {
		name         string
		link         wizard.DeepLink
		step         wizard.Step
		in, out      string
		guests       int
		expectedRoom string
	}{
		{
			name:         "known room starts at details",
			link:         wizard.DeepLink{RoomID: "1", CheckIn: "2024-06-01", CheckOut: "2024-06-03", Guests: "2"},
			step:         wizard.StepGuestDetails,
			in:           "2024-06-01",
			out:          "2024-06-03",
			guests:       2,
			expectedRoom: "1",
		},
		{
			name:   "unknown room stays at selection",
			link:   wizard.DeepLink{RoomID: "99"},
			step:   wizard.StepSelectRoom,
			in:     "2024-05-20",
			out:    "2024-05-21",
			guests: 1,
		},
		{
			name:   "past check-in is clamped to today",
			link:   wizard.DeepLink{CheckIn: "2023-01-01", CheckOut: "2024-05-25"},
			step:   wizard.StepSelectRoom,
			in:     "2024-05-20",
			out:    "2024-05-25",
			guests: 1,
		},
		{
			name:   "check-out not after check-in becomes next day",
			link:   wizard.DeepLink{CheckIn: "2024-06-10", CheckOut: "2024-06-09"},
			step:   wizard.StepSelectRoom,
			in:     "2024-06-10",
			out:    "2024-06-11",
			guests: 1,
		},
		{
			name:   "garbage values fall back",
			link:   wizard.DeepLink{CheckIn: "soon", CheckOut: "later", Guests: "many"},
			step:   wizard.StepSelectRoom,
			in:     "2024-05-20",
			out:    "2024-05-21",
			guests: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			w, err := wizard.NewFromDeepLink(context.Background(), f.deps, tt.link)
			if err != nil {
				t.Fatal(err)
			}

			v := w.View()
			if v.Step != tt.step {
				t.Errorf("step = %v, want %v", v.Step, tt.step)
			}

			if v.Dates.CheckIn.String() != tt.in || v.Dates.CheckOut.String() != tt.out {
				t.Errorf("dates = %v..%v, want %v..%v", v.Dates.CheckIn, v.Dates.CheckOut, tt.in, tt.out)
			}

			if v.Guest.Guests != tt.guests {
				t.Errorf("guests = %d, want %d", v.Guest.Guests, tt.guests)
			}

			if tt.expectedRoom == "" && v.Room != nil || tt.expectedRoom != "" && (v.Room == nil || v.Room.ID != tt.expectedRoom) {
				t.Errorf("room = %+v, want %q", v.Room, tt.expectedRoom)
			}
		})
	}
}

func TestHappyPathWithPromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")

	if err := w.ApplyPromo(ctx, " welcome20 "); err != nil {
		t.Fatalf("apply promo: %v", err)
	}

	if q := w.View().Quote; !q.Total.Equal(decimal.NewFromInt(19200)) || !q.Discount.Equal(decimal.NewFromInt(4800)) {
		t.Fatalf("quote = %+v", q)
	}

	b, err := w.Pay(ctx, booking.PaymentOnline)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	if b.Status != booking.StatusConfirmed || b.PaymentStatus != booking.PaymentPaid || b.PromoCode != "WELCOME20" {
		t.Fatalf("booking = %+v", b)
	}

	if len(b.ID) != 9 || b.PaymentRef == "" || !b.Total.Equal(decimal.NewFromInt(19200)) {
		t.Fatalf("booking = %+v", b)
	}

	if w.Step() != wizard.StepConfirmed || f.recorder.confirmed != 1 {
		t.Fatalf("step %v, confirmed %d", w.Step(), f.recorder.confirmed)
	}

	expectedSteps := []string{"select-room>guest-details", "guest-details>payment", "payment>confirmed"}
	if len(f.recorder.steps) != len(expectedSteps) {
		t.Fatalf("steps = %v", f.recorder.steps)
	}

	for i, s := range expectedSteps {
		if f.recorder.steps[i] != s {
			t.Fatalf("steps = %v", f.recorder.steps)
		}
	}
}

func TestPayTwiceKeepsOneBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")

	first, err := w.Pay(ctx, booking.PaymentAtProperty)
	if err != nil {
		t.Fatal(err)
	}

	second, err := w.Pay(ctx, booking.PaymentOnline)
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID || second.PaymentStatus != booking.PaymentUnpaid {
		t.Fatalf("second pay changed the booking: %+v vs %+v", first, second)
	}

	all, _ := f.store.ListBookings(ctx)
	if len(all) != 1 {
		t.Fatalf("stored %d bookings, want 1", len(all))
	}
}

func TestSubmitDetailsReportsCapacity(t *testing.T) {
	f := newFixture(t)
	w := wizard.New(f.deps)

	if err := w.SelectRoom(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}

	guest := validGuest()
	guest.Guests = 5

	err := w.SubmitDetails(booking.DateRange{CheckIn: date(t, "2024-06-01"), CheckOut: date(t, "2024-06-03")}, guest)

	inputErr := booking.IsInputError(err)
	if inputErr == nil || inputErr.FieldsCount() != 1 {
		t.Fatalf("expected one input error, got %v", err)
	}

	if msg := inputErr.Fields()[booking.FieldGuests]; msg != "Max capacity is 2" {
		t.Fatalf("guests message = %q", msg)
	}

	v := w.View()
	if v.Step != wizard.StepGuestDetails || v.Errors[booking.FieldGuests] == "" {
		t.Fatalf("view = %+v", v)
	}

	if f.recorder.invalid[booking.FieldGuests] != 1 {
		t.Fatalf("recorded failures = %v", f.recorder.invalid)
	}
}

func TestInvalidPromoKeepsTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")

	if err := w.ApplyPromo(ctx, "WELCOME20"); err != nil {
		t.Fatal(err)
	}

	for _, code := range []string{"NOPE", "OLD50", "", "WELCOME"} {
		if err := w.ApplyPromo(ctx, code); !errors.Is(err, boost.ErrInvalidPromo) {
			t.Fatalf("%q: expected ErrInvalidPromo, got %v", code, err)
		}

		v := w.View()
		if v.PromoCode != "WELCOME20" || !v.Quote.Total.Equal(decimal.NewFromInt(19200)) {
			t.Fatalf("%q changed the draft: %+v", code, v)
		}

		if v.Errors[booking.FieldPromo] != "Invalid promo code" {
			t.Fatalf("%q: promo error = %q", code, v.Errors[booking.FieldPromo])
		}
	}

	if err := w.RemovePromo(); err != nil {
		t.Fatal(err)
	}

	v := w.View()
	if v.PromoCode != "" || v.Errors[booking.FieldPromo] != "" || !v.Quote.Total.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("after remove: %+v", v)
	}
}

func TestBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	if err := w.Back(); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Fatalf("back at step 1: %v", err)
	}

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")

	if err := w.Back(); err != nil || w.Step() != wizard.StepGuestDetails {
		t.Fatalf("3->2: %v, %v", err, w.Step())
	}

	if err := w.Back(); err != nil || w.Step() != wizard.StepSelectRoom {
		t.Fatalf("2->1: %v, %v", err, w.Step())
	}

	toPayment(t, w, "2", "2024-06-01", "2024-06-02")

	if _, err := w.Pay(ctx, booking.PaymentAtProperty); err != nil {
		t.Fatal(err)
	}

	if err := w.Back(); !errors.Is(err, wizard.ErrTerminal) {
		t.Fatalf("back at step 4: %v", err)
	}

	if err := w.ApplyPromo(ctx, "WELCOME20"); !errors.Is(err, wizard.ErrTerminal) {
		t.Fatalf("promo at step 4: %v", err)
	}
}

func TestOutOfOrderActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	if _, err := w.Pay(ctx, booking.PaymentOnline); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Fatalf("pay at step 1: %v", err)
	}

	if err := w.SubmitDetails(booking.DateRange{}, validGuest()); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Fatalf("submit at step 1: %v", err)
	}

	if err := w.SelectRoom(ctx, "404"); !errors.Is(err, inventory.ErrRoomNotFound) {
		t.Fatalf("unknown room: %v", err)
	}

	if err := w.SelectRoom(ctx, "1"); err != nil {
		t.Fatal(err)
	}

	if err := w.SelectRoom(ctx, "2"); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Fatalf("select at step 2: %v", err)
	}
}

func TestChangeCheckInResetsCheckOut(t *testing.T) {
	f := newFixture(t)
	w := wizard.New(f.deps)

	if err := w.SelectRoom(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}

	_ = w.SubmitDetails(booking.DateRange{}, validGuest())

	if v := w.View(); v.Errors[booking.FieldCheckIn] == "" {
		t.Fatalf("expected a check-in error, got %v", v.Errors)
	}

	if err := w.ChangeCheckIn(date(t, "2024-07-04")); err != nil {
		t.Fatal(err)
	}

	v := w.View()
	if v.Dates.CheckOut.String() != "2024-07-05" || v.Errors[booking.FieldCheckIn] != "" || v.Errors[booking.FieldCheckOut] != "" {
		t.Fatalf("view = %+v", v)
	}
}

func TestDeclinedPaymentCanSwitchMethod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	// 45000 x 3 nights is above the decline threshold.
	toPayment(t, w, "2", "2024-06-01", "2024-06-04")

	if _, err := w.Pay(ctx, booking.PaymentOnline); !errors.Is(err, wizard.ErrPaymentDeclined) {
		t.Fatalf("expected decline, got %v", err)
	}

	v := w.View()
	if v.Step != wizard.StepPayment || v.BookingID == "" {
		t.Fatalf("after decline: %+v", v)
	}

	b, err := w.Pay(ctx, booking.PaymentAtProperty)
	if err != nil {
		t.Fatal(err)
	}

	if b.ID != v.BookingID || b.PaymentStatus != booking.PaymentUnpaid {
		t.Fatalf("booking = %+v, draft id %v", b, v.BookingID)
	}
}

func TestPersistFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")
	f.store.setFail(true)

	if _, err := w.Pay(ctx, booking.PaymentOnline); !errors.Is(err, booking.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}

	v := w.View()
	if v.Step != wizard.StepPayment || v.Guest.Name != "Asha Rao" {
		t.Fatalf("draft lost: %+v", v)
	}

	f.store.setFail(false)

	b, err := w.Pay(ctx, booking.PaymentOnline)
	if err != nil {
		t.Fatal(err)
	}

	if b.ID != v.BookingID {
		t.Fatalf("retry used a new id: %v vs %v", b.ID, v.BookingID)
	}

	all, _ := f.store.ListBookings(ctx)
	if len(all) != 1 {
		t.Fatalf("stored %d bookings, want 1", len(all))
	}
}

func TestUnknownPaymentMethod(t *testing.T) {
	f := newFixture(t)
	w := wizard.New(f.deps)

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")

	if _, err := w.Pay(context.Background(), "crypto"); !errors.Is(err, wizard.ErrPaymentMethod) {
		t.Fatalf("expected ErrPaymentMethod, got %v", err)
	}

	if w.View().BookingID != "" {
		t.Fatal("booking id must not be generated for a rejected method")
	}
}

func TestPayAfterDeclineWithLowerTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	toPayment(t, w, "2", "2024-06-01", "2024-06-04")

	if _, err := w.Pay(ctx, booking.PaymentOnline); !errors.Is(err, wizard.ErrPaymentDeclined) {
		t.Fatalf("expected decline for 135000, got %v", err)
	}

	if err := w.Back(); err != nil {
		t.Fatal(err)
	}

	r := booking.DateRange{CheckIn: date(t, "2024-06-01"), CheckOut: date(t, "2024-06-02")}
	if err := w.SubmitDetails(r, validGuest()); err != nil {
		t.Fatal(err)
	}

	b, err := w.Pay(ctx, booking.PaymentOnline)
	if err != nil {
		t.Fatalf("one night should be payable online: %v", err)
	}

	if b.PaymentStatus != booking.PaymentPaid || !b.Total.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("booking = %+v", b)
	}
}

func TestPayRetryChargesTheNewTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")

	if err := w.ApplyPromo(ctx, "WELCOME20"); err != nil {
		t.Fatal(err)
	}

	f.store.setFail(true)

	if _, err := w.Pay(ctx, booking.PaymentOnline); !errors.Is(err, booking.ErrPersist) {
		t.Fatalf("expected persist failure, got %v", err)
	}

	f.store.setFail(false)

	if err := w.RemovePromo(); err != nil {
		t.Fatal(err)
	}

	b, err := w.Pay(ctx, booking.PaymentOnline)
	if err != nil {
		t.Fatal(err)
	}

	auth, ok := f.gateway.Lookup(b.ID)
	if !ok || auth.Status != payment.StatusAuthorized || auth.ID != b.PaymentRef {
		t.Fatalf("authorization %+v does not back booking %+v", auth, b)
	}

	if !auth.Amount.Equal(b.Total) || !b.Total.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("authorized %v for a booking of %v", auth.Amount, b.Total)
	}
}

func TestPayDropsDeactivatedPromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := wizard.New(f.deps)

	toPayment(t, w, "1", "2024-06-01", "2024-06-03")

	if err := w.ApplyPromo(ctx, "WELCOME20"); err != nil {
		t.Fatal(err)
	}

	deactivated := &booking.PromoCode{ID: "p1", Code: "WELCOME20", DiscountPercent: 20, Active: false}
	if err := f.store.SavePromo(ctx, deactivated); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Pay(ctx, booking.PaymentAtProperty); !errors.Is(err, boost.ErrInvalidPromo) {
		t.Fatalf("expected ErrInvalidPromo, got %v", err)
	}

	v := w.View()
	if v.Step != wizard.StepPayment || v.PromoCode != "" || !v.Quote.Total.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("view = %+v", v)
	}

	if v.Errors[booking.FieldPromo] != "Invalid promo code" {
		t.Fatalf("promo error = %q", v.Errors[booking.FieldPromo])
	}

	b, err := w.Pay(ctx, booking.PaymentAtProperty)
	if err != nil {
		t.Fatal(err)
	}

	if b.PromoCode != "" || !b.Total.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("booking = %+v", b)
	}
}
