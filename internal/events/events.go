package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

type Publisher interface {
	Publish(ctx context.Context, event booking.Event) error
}

// Log writes every event to the application log.
type Log struct {
	l *logger.Logger
}

func NewLog(l *logger.Logger) *Log {
	return &Log{l: l}
}

func (p *Log) Publish(_ context.Context, event booking.Event) error {
	p.l.LogInfo("Event %v %v: booking %v, status %v, total %v",
		event.ID, event.Type, event.BookingID, event.Booking.Status, event.Booking.Total)

	return nil
}

// Fanout delivers an event to every publisher and joins their errors. A
// failing publisher does not stop delivery to the rest.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event booking.Event) error {
	var errs []error

	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", p, err))
		}
	}

	return errors.Join(errs...)
}
