package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstrong/resort/internal/logger"
)

const (
	recentBookingsCount = 5
	revenueMonths       = 6
)

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type storageReader interface {
	ListBookings(ctx context.Context) ([]*Booking, error)
	GetBooking(ctx context.Context, id string) (*Booking, error)
	ListRooms(ctx context.Context) ([]*RoomOffering, error)
}

type storageWriter interface {
	SaveBooking(ctx context.Context, booking *Booking) error
}

type storage interface {
	storageReader
	storageWriter
}

type eventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type Conf struct {
	// RejectOverlaps refuses a booking whose room and dates intersect an
	// active booking. Off by default.
	RejectOverlaps bool
	Now            func() time.Time
}

type Manager struct {
	mu          sync.Mutex
	l           *logger.Logger
	storage     storage
	idGenerator idGenerator
	events      eventPublisher
	conf        Conf
}

func New(l *logger.Logger, storage storage, idGenerator idGenerator, events eventPublisher, conf Conf) *Manager {
	if conf.Now == nil {
		conf.Now = time.Now
	}

	//nolint:exhaustruct
	return &Manager{
		l:           l,
		storage:     storage,
		idGenerator: idGenerator,
		events:      events,
		conf:        conf,
	}
}

func (b *Booking) validate() error {
	inputErr := NewInputError()

	if b.ID == "" {
		inputErr.AddError("id", "provide booking id")
	}

	if b.RoomID == "" {
		inputErr.AddError("room_id", "provide room id")
	}

	if !b.Status.Valid() {
		inputErr.AddError("status", "provide valid status")
	}

	if !b.PaymentMethod.Valid() {
		inputErr.AddError("payment_method", "provide valid payment method")
	}

	if inputErr.FieldsCount() > 0 {
		return inputErr
	}

	return nil
}

// Place persists a confirmed booking. Placing the same id twice returns the
// stored record and has no other effect, as long as room, dates and guest
// match. Otherwise ErrIDConflict is returned.
func (m *Manager) Place(ctx context.Context, booking *Booking) (*Booking, error) {
	if err := booking.validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.storage.GetBooking(ctx, booking.ID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, fmt.Errorf("get booking %v: %w: %w", booking.ID, ErrPersist, err)
	}

	if existing != nil {
		if !sameStay(existing, booking) {
			m.l.LogErrorf("Booking id %v is already used by a different stay", booking.ID)

			return nil, fmt.Errorf("place booking %v: %w", booking.ID, ErrIDConflict)
		}

		m.l.LogInfo("Booking %v already placed, returning stored record", booking.ID)

		return existing, nil
	}

	if m.conf.RejectOverlaps {
		if err := m.checkAvailability(ctx, booking); err != nil {
			return nil, err
		}
	}

	now := m.conf.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}

	booking.UpdatedAt = now

	if err := m.storage.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking %v: %w: %w", booking.ID, ErrPersist, err)
	}

	m.l.LogInfo(
		"Booking %v placed: room %v, %v..%v, total %v, payment %v/%v",
		booking.ID, booking.RoomID, booking.CheckIn, booking.CheckOut,
		booking.Total, booking.PaymentMethod, booking.PaymentStatus,
	)

	m.publish(ctx, EventConfirmed, booking)

	return booking, nil
}

func sameStay(a, b *Booking) bool {
	return a.RoomID == b.RoomID &&
		a.CheckIn.Equal(b.CheckIn) &&
		a.CheckOut.Equal(b.CheckOut) &&
		a.CustomerName == b.CustomerName &&
		a.CustomerEmail == b.CustomerEmail
}

func (m *Manager) checkAvailability(ctx context.Context, booking *Booking) error {
	bookings, err := m.storage.ListBookings(ctx)
	if err != nil {
		return fmt.Errorf("list bookings: %w: %w", ErrPersist, err)
	}

	availabilityErr := NewAvailabilityError()

	for _, other := range bookings {
		if other.RoomID != booking.RoomID || !other.Status.Active() {
			continue
		}

		if Overlaps(other.Range(), booking.Range()) {
			availabilityErr.AddUnavailableRoom(booking.RoomID, other.ID, other.Range())
		}
	}

	if availabilityErr.UnavailableRoomsCount() > 0 {
		return availabilityErr
	}

	return nil
}

// Overlaps reports whether two stays share a night. Ranges are normalized the
// same way Nights treats them.
func Overlaps(a, b DateRange) bool {
	aFrom, aTo := span(a)
	bFrom, bTo := span(b)

	return aFrom.Before(bTo) && bFrom.Before(aTo)
}

func span(r DateRange) (time.Time, time.Time) {
	from, to := r.CheckIn.Time, r.CheckOut.Time
	if to.Before(from) {
		from, to = to, from
	}

	if !to.After(from) {
		to = from.Add(day)
	}

	return from, to
}

func (m *Manager) Get(ctx context.Context, id string) (*Booking, error) {
	booking, err := m.storage.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %v: %w", id, err)
	}

	return booking, nil
}

// List returns bookings in placement order. An empty status returns all.
func (m *Manager) List(ctx context.Context, status Status) ([]*Booking, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	bookings, err := m.storage.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	if status == "" {
		return bookings, nil
	}

	filtered := make([]*Booking, 0, len(bookings))

	for _, b := range bookings {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}

	return filtered, nil
}

func CanTransition(from, to Status) bool {
	switch to {
	case StatusCheckedIn:
		return from == StatusConfirmed
	case StatusCheckedOut:
		return from == StatusCheckedIn
	case StatusCancelled:
		return from != StatusCancelled
	case StatusConfirmed:
		return false
	default:
		return false
	}
}

func (m *Manager) UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	booking, err := m.storage.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %v: %w", id, err)
	}

	if !CanTransition(booking.Status, status) {
		return nil, fmt.Errorf("booking %v from %v to %v: %w", id, booking.Status, status, ErrInvalidTransition)
	}

	from := booking.Status
	booking.Status = status
	booking.UpdatedAt = m.conf.Now().UTC()

	if err := m.storage.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking %v: %w: %w", id, ErrPersist, err)
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = "unknown"
	}

	m.l.LogInfo("Booking %v moved from %v to %v by %v", id, from, status, actor)

	m.publish(ctx, EventStatusChanged, booking)

	return booking, nil
}

func (m *Manager) publish(ctx context.Context, eventType EventType, booking *Booking) {
	if m.events == nil {
		return
	}

	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		m.l.LogErrorf("Could not generate event id for booking %v: %v", booking.ID, err.Error())

		return
	}

	event := Event{
		ID:        id,
		Type:      eventType,
		BookingID: booking.ID,
		Booking:   *booking,
		CreatedAt: m.conf.Now().UTC(),
	}

	if err := m.events.Publish(ctx, event); err != nil {
		m.l.LogErrorf("Could not publish %v for booking %v: %v", eventType, booking.ID, err.Error())
	}
}

func (m *Manager) Dashboard(ctx context.Context) (*Dashboard, error) {
	bookings, err := m.storage.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	rooms, err := m.storage.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	now := m.conf.Now().UTC()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(revenueMonths - 1), 0)

	monthly := make([]MonthlyRevenue, revenueMonths)
	for i := range monthly {
		monthly[i] = MonthlyRevenue{
			Name:  firstMonth.AddDate(0, i, 0).Format("Jan"),
			Value: decimal.Zero,
		}
	}

	revenue := decimal.Zero
	active := 0

	for _, b := range bookings {
		if b.Status.Active() {
			active++
		}

		if b.Status == StatusCancelled {
			continue
		}

		revenue = revenue.Add(b.Total)

		created := b.CreatedAt.UTC()
		idx := (created.Year()-firstMonth.Year())*12 + int(created.Month()) - int(firstMonth.Month()) //nolint:gomnd

		if idx >= 0 && idx < revenueMonths {
			monthly[idx].Value = monthly[idx].Value.Add(b.Total)
		}
	}

	occupancy := 0
	if len(rooms) > 0 {
		occupancy = active * 100 / len(rooms) //nolint:gomnd
		if occupancy > 100 {                  //nolint:gomnd
			occupancy = 100
		}
	}

	recent := make([]*Booking, 0, recentBookingsCount)
	for i := len(bookings) - 1; i >= 0 && len(recent) < recentBookingsCount; i-- {
		recent = append(recent, bookings[i])
	}

	return &Dashboard{
		TotalBookings:  len(bookings),
		TotalRevenue:   revenue,
		OccupancyRate:  occupancy,
		MonthlyRevenue: monthly,
		RecentBookings: recent,
	}, nil
}
