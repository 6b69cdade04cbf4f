package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstrong/resort/internal/logger"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusDeclined   Status = "declined"
	StatusTimedOut   Status = "timed-out"
)

// Final reports whether retrying the same booking can change the outcome.
func (s Status) Final() bool {
	return s == StatusAuthorized || s == StatusDeclined
}

var (
	ErrDeclined = errors.New("payment declined")
	ErrTimedOut = errors.New("payment timed out")
	ErrAmount   = errors.New("payment amount must be positive")
)

type Request struct {
	BookingID string
	Amount    decimal.Decimal
}

type Authorization struct {
	ID        string          `json:"id"`
	BookingID string          `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    Status          `json:"status"`
	Attempts  int             `json:"attempts"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type Conf struct {
	L *logger.Logger
	// Latency is how long the simulated processor takes to answer.
	Latency time.Duration
	// Timeout bounds a single attempt. Zero means no bound besides ctx.
	Timeout time.Duration
	// DeclineAbove declines amounts strictly greater than it. Zero disables.
	DeclineAbove decimal.Decimal
}

// Gateway simulates a card processor. Outcomes are remembered per booking and
// amount, so retrying an authorized or declined booking returns the first
// answer. A different amount starts a new authorization.
type Gateway struct {
	mu          sync.Mutex
	conf        Conf
	idGenerator idGenerator
	auths       map[string]*Authorization
}

func New(conf Conf, idGenerator idGenerator) *Gateway {
	//nolint:exhaustruct
	return &Gateway{
		conf:        conf,
		idGenerator: idGenerator,
		auths:       make(map[string]*Authorization),
	}
}

func (g *Gateway) Authorize(ctx context.Context, req Request) (*Authorization, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrAmount
	}

	auth, err := g.begin(ctx, req)
	if err != nil {
		return nil, err
	}

	if auth.Status.Final() {
		g.conf.L.LogInfo("Payment for booking %v already %v, replaying", req.BookingID, auth.Status)

		return auth, statusErr(auth.Status)
	}

	if g.conf.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, g.conf.Timeout)
		defer cancel()
	}

	outcome := g.process(ctx, req)

	return g.finish(req.BookingID, outcome)
}

func (g *Gateway) begin(ctx context.Context, req Request) (*Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	auth, ok := g.auths[req.BookingID]

	switch {
	case !ok:
		auth = &Authorization{BookingID: req.BookingID} //nolint:exhaustruct
		g.auths[req.BookingID] = auth
	case !auth.Amount.Equal(req.Amount):
		// An earlier outcome only covers the amount it was given.
		g.conf.L.LogInfo("Payment for booking %v changed from %v to %v, starting a new authorization",
			req.BookingID, auth.Amount, req.Amount)
	case auth.Status.Final():
		c := *auth

		return &c, nil
	default:
		auth.Status = StatusPending
		auth.Attempts++
		auth.UpdatedAt = time.Now().UTC()

		c := *auth

		return &c, nil
	}

	id, err := g.idGenerator.GetID(ctx)
	if err != nil {
		if !ok {
			delete(g.auths, req.BookingID)
		}

		return nil, fmt.Errorf("generate authorization id: %w", err)
	}

	auth.ID = "AUTH-" + id
	auth.Amount = req.Amount
	auth.Status = StatusPending
	auth.Attempts = 1
	auth.UpdatedAt = time.Now().UTC()

	c := *auth

	return &c, nil
}

func (g *Gateway) process(ctx context.Context, req Request) Status {
	timer := time.NewTimer(g.conf.Latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return StatusTimedOut
	case <-timer.C:
	}

	if !g.conf.DeclineAbove.IsZero() && req.Amount.GreaterThan(g.conf.DeclineAbove) {
		return StatusDeclined
	}

	return StatusAuthorized
}

func (g *Gateway) finish(bookingID string, status Status) (*Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	auth := g.auths[bookingID]
	auth.Status = status
	auth.UpdatedAt = time.Now().UTC()

	g.conf.L.LogInfo("Payment %v for booking %v: %v (attempt %d)", auth.ID, bookingID, status, auth.Attempts)

	c := *auth

	return &c, statusErr(status)
}

func statusErr(s Status) error {
	switch s {
	case StatusDeclined:
		return ErrDeclined
	case StatusTimedOut:
		return ErrTimedOut
	case StatusPending, StatusAuthorized:
		return nil
	default:
		return nil
	}
}

// Lookup returns the latest authorization for a booking, if any.
func (g *Gateway) Lookup(bookingID string) (*Authorization, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	auth, ok := g.auths[bookingID]
	if !ok {
		return nil, false
	}

	c := *auth

	return &c, true
}
