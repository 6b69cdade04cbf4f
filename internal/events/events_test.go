package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

type recorder struct {
	got []booking.Event
	err error
}

func (r *recorder) Publish(_ context.Context, e booking.Event) error {
	r.got = append(r.got, e)

	return r.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	boom := errors.New("broker down")
	first := &recorder{err: boom}
	second := &recorder{}

	err := Fanout{first, second}.Publish(context.Background(), booking.Event{ID: "1", Type: booking.EventConfirmed})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}

	if len(first.got) != 1 || len(second.got) != 1 {
		t.Fatalf("deliveries: %d, %d", len(first.got), len(second.got))
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer

	p := NewLog(logger.New(logger.Conf{Output: &buf, Level: "info"}))

	if err := p.Publish(context.Background(), booking.Event{ID: "EV1", Type: booking.EventConfirmed, BookingID: "AB12CD34E"}); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "AB12CD34E") {
		t.Fatalf("log output: %s", buf.String())
	}
}
