package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstrong/resort/internal/idgen/simple"
	"github.com/avstrong/resort/internal/logger"
)

func TestAuthorizeSucceedsAndReplays(t *testing.T) {
	g := New(Conf{L: logger.Nop()}, simple.New(""))
	req := Request{BookingID: "AB12", Amount: decimal.NewFromInt(19200)}

	first, err := g.Authorize(context.Background(), req)
	if err != nil || first.Status != StatusAuthorized || first.ID != "AUTH-1" {
		t.Fatalf("first: %+v, %v", first, err)
	}

	second, err := g.Authorize(context.Background(), req)
	if err != nil || second.ID != first.ID || second.Attempts != 1 {
		t.Fatalf("replay should return the same authorization: %+v, %v", second, err)
	}
}

func TestAuthorizeDeclinesAboveThreshold(t *testing.T) {
	g := New(Conf{L: logger.Nop(), DeclineAbove: decimal.NewFromInt(100000)}, simple.New(""))

	auth, err := g.Authorize(context.Background(), Request{BookingID: "AB12", Amount: decimal.NewFromInt(135000)})
	if !errors.Is(err, ErrDeclined) || auth.Status != StatusDeclined {
		t.Fatalf("expected decline, got %+v, %v", auth, err)
	}

	again, err := g.Authorize(context.Background(), Request{BookingID: "AB12", Amount: decimal.NewFromInt(135000)})
	if !errors.Is(err, ErrDeclined) || again.Attempts != 1 {
		t.Fatalf("decline should be final: %+v, %v", again, err)
	}
}

func TestAuthorizeTimesOutAndCanBeRetried(t *testing.T) {
	g := New(Conf{L: logger.Nop(), Latency: 50 * time.Millisecond, Timeout: 5 * time.Millisecond}, simple.New(""))
	req := Request{BookingID: "AB12", Amount: decimal.NewFromInt(8500)}

	auth, err := g.Authorize(context.Background(), req)
	if !errors.Is(err, ErrTimedOut) || auth.Status != StatusTimedOut {
		t.Fatalf("expected timeout, got %+v, %v", auth, err)
	}

	g.conf.Timeout = 0
	g.conf.Latency = 0

	retry, err := g.Authorize(context.Background(), req)
	if err != nil || retry.Status != StatusAuthorized {
		t.Fatalf("retry: %+v, %v", retry, err)
	}

	if retry.ID != auth.ID || retry.Attempts != 2 {
		t.Fatalf("retry should reuse the authorization: first %+v, retry %+v", auth, retry)
	}

	stored, ok := g.Lookup("AB12")
	if !ok || stored.Status != StatusAuthorized {
		t.Fatalf("lookup: %+v, %v", stored, ok)
	}
}

func TestAuthorizeHonoursCallerContext(t *testing.T) {
	g := New(Conf{L: logger.Nop(), Latency: time.Second}, simple.New(""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Authorize(ctx, Request{BookingID: "AB12", Amount: decimal.NewFromInt(1)}); !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected timeout on cancelled ctx, got %v", err)
	}
}

func TestAuthorizeRejectsNonPositiveAmount(t *testing.T) {
	g := New(Conf{L: logger.Nop()}, simple.New(""))

	if _, err := g.Authorize(context.Background(), Request{BookingID: "AB12", Amount: decimal.Zero}); !errors.Is(err, ErrAmount) {
		t.Fatalf("expected ErrAmount, got %v", err)
	}

	if _, ok := g.Lookup("AB12"); ok {
		t.Fatal("rejected request must not be recorded")
	}
}

func TestAuthorizeNewAmountStartsOver(t *testing.T) {
	tests := []struct {
		name       string
		first      int64
		firstErr   error
		second     int64
		wantStatus Status
		wantErr    error
	}{
		{
			name:       "declined then lower total",
			first:      135000,
			firstErr:   ErrDeclined,
			second:     36000,
			wantStatus: StatusAuthorized,
		},
		{
			name:       "authorized then higher total",
			first:      19200,
			second:     24000,
			wantStatus: StatusAuthorized,
		},
		{
			name:       "authorized then total above threshold",
			first:      19200,
			second:     135000,
			wantStatus: StatusDeclined,
			wantErr:    ErrDeclined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(Conf{L: logger.Nop(), DeclineAbove: decimal.NewFromInt(100000)}, simple.New(""))

			first, err := g.Authorize(context.Background(), Request{BookingID: "AB12", Amount: decimal.NewFromInt(tt.first)})
			if !errors.Is(err, tt.firstErr) {
				t.Fatalf("first attempt: %+v, %v", first, err)
			}

			second, err := g.Authorize(context.Background(), Request{BookingID: "AB12", Amount: decimal.NewFromInt(tt.second)})
			if !errors.Is(err, tt.wantErr) || second.Status != tt.wantStatus {
				t.Fatalf("second attempt: %+v, %v", second, err)
			}

			if !second.Amount.Equal(decimal.NewFromInt(tt.second)) || second.ID == first.ID || second.Attempts != 1 {
				t.Fatalf("expected a fresh authorization for %v, got %+v (first %+v)", tt.second, second, first)
			}

			stored, _ := g.Lookup("AB12")
			if !stored.Amount.Equal(decimal.NewFromInt(tt.second)) || stored.Status != tt.wantStatus {
				t.Fatalf("lookup: %+v", stored)
			}
		})
	}
}
