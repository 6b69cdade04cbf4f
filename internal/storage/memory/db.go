package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

type Config struct {
	L *logger.Logger
}

// table keeps records in insertion order; an upsert keeps the original slot.
type table[T any] struct {
	order []string
	rows  map[string]*T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) list(clone func(*T) *T) []*T {
	out := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, clone(t.rows[id]))
	}

	return out
}

func (t *table[T]) put(id string, row *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}

	t.rows[id] = row
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}

	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })

	return true
}

type DB struct {
	mu       sync.Mutex
	l        *logger.Logger
	rooms    *table[booking.RoomOffering]
	promos   *table[booking.PromoCode]
	bookings *table[booking.Booking]
}

func New(conf Config) *DB {
	//nolint:exhaustruct
	return &DB{
		l:        conf.L,
		rooms:    newTable[booking.RoomOffering](),
		promos:   newTable[booking.PromoCode](),
		bookings: newTable[booking.Booking](),
	}
}

func cloneRoom(r *booking.RoomOffering) *booking.RoomOffering {
	c := *r
	c.Amenities = slices.Clone(r.Amenities)
	c.Images = slices.Clone(r.Images)

	return &c
}

func clonePromo(p *booking.PromoCode) *booking.PromoCode {
	c := *p

	return &c
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	c := *b

	return &c
}

func (db *DB) ListRooms(_ context.Context) ([]*booking.RoomOffering, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.rooms.list(cloneRoom), nil
}

func (db *DB) GetRoom(_ context.Context, id string) (*booking.RoomOffering, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	room, ok := db.rooms.rows[id]
	if !ok {
		return nil, fmt.Errorf("room %v: %w", id, booking.ErrRecordNotFound)
	}

	return cloneRoom(room), nil
}

func (db *DB) SaveRoom(_ context.Context, room *booking.RoomOffering) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.rooms.put(room.ID, cloneRoom(room))

	return nil
}

func (db *DB) DeleteRoom(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.rooms.remove(id) {
		return fmt.Errorf("room %v: %w", id, booking.ErrRecordNotFound)
	}

	return nil
}

func (db *DB) ListPromos(_ context.Context) ([]*booking.PromoCode, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.promos.list(clonePromo), nil
}

func (db *DB) GetPromo(_ context.Context, id string) (*booking.PromoCode, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	promo, ok := db.promos.rows[id]
	if !ok {
		return nil, fmt.Errorf("promo %v: %w", id, booking.ErrRecordNotFound)
	}

	return clonePromo(promo), nil
}

func (db *DB) FindPromoByCode(_ context.Context, code string) (*booking.PromoCode, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, id := range db.promos.order {
		if promo := db.promos.rows[id]; strings.EqualFold(promo.Code, code) {
			return clonePromo(promo), nil
		}
	}

	return nil, fmt.Errorf("promo code %v: %w", code, booking.ErrRecordNotFound)
}

func (db *DB) SavePromo(_ context.Context, promo *booking.PromoCode) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.promos.put(promo.ID, clonePromo(promo))

	return nil
}

func (db *DB) DeletePromo(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.promos.remove(id) {
		return fmt.Errorf("promo %v: %w", id, booking.ErrRecordNotFound)
	}

	return nil
}

func (db *DB) ListBookings(_ context.Context) ([]*booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.bookings.list(cloneBooking), nil
}

func (db *DB) GetBooking(_ context.Context, id string) (*booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.bookings.rows[id]
	if !ok {
		return nil, fmt.Errorf("booking %v: %w", id, booking.ErrRecordNotFound)
	}

	return cloneBooking(b), nil
}

func (db *DB) SaveBooking(_ context.Context, b *booking.Booking) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.bookings.put(b.ID, cloneBooking(b))

	return nil
}

func (db *DB) Close() error {
	return nil
}
