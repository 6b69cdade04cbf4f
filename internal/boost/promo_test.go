package boost_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/boost"
	"github.com/avstrong/resort/internal/idgen/simple"
	"github.com/avstrong/resort/internal/logger"
	"github.com/avstrong/resort/internal/storage/memory"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) PromoLookup(ok bool) {
	if ok {
		o.hits++

		return
	}

	o.misses++
}

func newRegistry(t *testing.T) (*boost.Registry, *countingObserver) {
	t.Helper()

	obs := &countingObserver{}
	db := memory.New(memory.Config{L: logger.Nop()})
	r := boost.New(logger.Nop(), db, simple.New("P"), obs)

	for _, p := range []*booking.PromoCode{
		{Code: "WELCOME20", DiscountPercent: 20, Active: true},
		{Code: "summer10", DiscountPercent: 10, Active: true},
		{Code: "OLD50", DiscountPercent: 50, Active: false},
	} {
		if _, err := r.Save(context.Background(), p); err != nil {
			t.Fatalf("seed %v: %v", p.Code, err)
		}
	}

	return r, obs
}

func TestLookup(t *testing.T) {
	r, obs := newRegistry(t)

	tests := []struct {
		code    string
		percent int
		err     error
	}{
		{"WELCOME20", 20, nil},
		{"welcome20", 20, nil},
		{"  Summer10 ", 10, nil},
		{"OLD50", 0, boost.ErrInvalidPromo},
		{"WELCOME", 0, boost.ErrInvalidPromo},
		{"WELCOME200", 0, boost.ErrInvalidPromo},
		{"", 0, boost.ErrInvalidPromo},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			promo, err := r.Lookup(context.Background(), tt.code)
			if tt.err != nil {
				if !errors.Is(err, tt.err) || promo != nil {
					t.Fatalf("expected %v, got %v, %v", tt.err, promo, err)
				}

				if err.Error() != "Invalid promo code" {
					t.Fatalf("message = %q", err.Error())
				}

				return
			}

			if err != nil || promo.DiscountPercent != tt.percent {
				t.Fatalf("got %+v, %v", promo, err)
			}
		})
	}

	if obs.hits != 3 || obs.misses != 4 {
		t.Fatalf("observer hits=%d misses=%d", obs.hits, obs.misses)
	}
}

func TestSaveNormalizesAndRejectsDuplicates(t *testing.T) {
	r, _ := newRegistry(t)

	promos, _ := r.List(context.Background())
	if promos[1].Code != "SUMMER10" {
		t.Fatalf("code not normalized: %+v", promos[1])
	}

	if _, err := r.Save(context.Background(), &booking.PromoCode{Code: "Welcome20", DiscountPercent: 5}); !errors.Is(err, boost.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}

	updated, err := r.Save(context.Background(), &booking.PromoCode{ID: "P1", Code: "WELCOME20", DiscountPercent: 25, Active: true})
	if err != nil || updated.DiscountPercent != 25 {
		t.Fatalf("update of same promo should pass: %v %v", updated, err)
	}
}

func TestSaveValidatesPercent(t *testing.T) {
	r, _ := newRegistry(t)

	for _, pct := range []int{-1, 101} {
		_, err := r.Save(context.Background(), &booking.PromoCode{Code: "BAD", DiscountPercent: pct})
		if booking.IsInputError(err) == nil {
			t.Fatalf("percent %d: expected input error, got %v", pct, err)
		}
	}
}

func TestSetActiveAndDelete(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	if _, err := r.SetActive(ctx, "P3", true); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Lookup(ctx, "OLD50"); err != nil {
		t.Fatalf("activated promo not found: %v", err)
	}

	if err := r.Delete(ctx, "P3"); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Lookup(ctx, "OLD50"); !errors.Is(err, boost.ErrInvalidPromo) {
		t.Fatalf("deleted promo still resolves: %v", err)
	}

	if _, err := r.SetActive(ctx, "P3", true); !errors.Is(err, boost.ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got %v", err)
	}

	if err := r.Delete(ctx, "P3"); !errors.Is(err, boost.ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got %v", err)
	}
}
