package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avstrong/resort/internal/logger"
)

type session struct {
	w       *Wizard
	touched time.Time
}

// Registry holds live wizards by an opaque session id.
type Registry struct {
	mu       sync.Mutex
	l        *logger.Logger
	now      func() time.Time
	sessions map[string]*session
}

func NewRegistry(l *logger.Logger, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}

	//nolint:exhaustruct
	return &Registry{
		l:        l,
		now:      now,
		sessions: make(map[string]*session),
	}
}

func (r *Registry) Create(w *Wizard) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = &session{w: w, touched: r.now()}

	return id
}

// Get returns the wizard and marks the session as used.
func (r *Registry) Get(id string) (*Wizard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}

	s.touched = r.now()

	return s.w, true
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and reports how many.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := r.now().Add(-maxIdle)
	removed := 0

	for id, s := range r.sessions {
		if s.touched.Before(deadline) {
			delete(r.sessions, id)
			removed++
		}
	}

	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.l.LogInfo("Expired %d wizard sessions", n)
			}
		}
	}
}
