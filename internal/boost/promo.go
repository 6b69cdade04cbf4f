package boost

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

const maxDiscountPercent = 100

var (
	ErrInvalidPromo  = errors.New("Invalid promo code") //nolint:stylecheck // shown to guests as is
	ErrDuplicateCode = errors.New("promo code already exists")
	ErrPromoNotFound = errors.New("promo not found")
)

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type storage interface {
	ListPromos(ctx context.Context) ([]*booking.PromoCode, error)
	GetPromo(ctx context.Context, id string) (*booking.PromoCode, error)
	FindPromoByCode(ctx context.Context, code string) (*booking.PromoCode, error)
	SavePromo(ctx context.Context, promo *booking.PromoCode) error
	DeletePromo(ctx context.Context, id string) error
}

type observer interface {
	PromoLookup(ok bool)
}

// Registry is the source of discount codes.
type Registry struct {
	l           *logger.Logger
	storage     storage
	idGenerator idGenerator
	observer    observer
}

func New(l *logger.Logger, storage storage, idGenerator idGenerator, observer observer) *Registry {
	return &Registry{
		l:           l,
		storage:     storage,
		idGenerator: idGenerator,
		observer:    observer,
	}
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup resolves a code typed by a guest. Only an exact match on the
// normalized code of an active promo is accepted.
func (r *Registry) Lookup(ctx context.Context, code string) (*booking.PromoCode, error) {
	promo, err := r.lookup(ctx, Normalize(code))

	if r.observer != nil {
		r.observer.PromoLookup(err == nil)
	}

	return promo, err
}

func (r *Registry) lookup(ctx context.Context, code string) (*booking.PromoCode, error) {
	if code == "" {
		return nil, ErrInvalidPromo
	}

	promo, err := r.storage.FindPromoByCode(ctx, code)
	if errors.Is(err, booking.ErrRecordNotFound) {
		return nil, ErrInvalidPromo
	}

	if err != nil {
		return nil, fmt.Errorf("find promo %v: %w", code, err)
	}

	if promo.Code != code || !promo.Active {
		return nil, ErrInvalidPromo
	}

	return promo, nil
}

func (r *Registry) List(ctx context.Context) ([]*booking.PromoCode, error) {
	promos, err := r.storage.ListPromos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}

	return promos, nil
}

func validatePromo(promo *booking.PromoCode) error {
	inputErr := booking.NewInputError()

	if promo.Code == "" {
		inputErr.AddError("code", "Code is required")
	}

	if promo.DiscountPercent < 0 || promo.DiscountPercent > maxDiscountPercent {
		inputErr.AddError("discount_percent", "Discount must be between 0 and 100")
	}

	if inputErr.FieldsCount() > 0 {
		return inputErr
	}

	return nil
}

// Save creates or replaces a promo code. Codes are stored uppercase and must
// be unique.
func (r *Registry) Save(ctx context.Context, promo *booking.PromoCode) (*booking.PromoCode, error) {
	promo.Code = Normalize(promo.Code)

	if err := validatePromo(promo); err != nil {
		return nil, err
	}

	existing, err := r.storage.FindPromoByCode(ctx, promo.Code)
	if err != nil && !errors.Is(err, booking.ErrRecordNotFound) {
		return nil, fmt.Errorf("find promo %v: %w", promo.Code, err)
	}

	if existing != nil && existing.ID != promo.ID {
		return nil, fmt.Errorf("%v: %w", promo.Code, ErrDuplicateCode)
	}

	if promo.ID == "" {
		id, err := r.idGenerator.GetID(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", booking.ErrNextID, err)
		}

		promo.ID = id
	}

	if err := r.storage.SavePromo(ctx, promo); err != nil {
		return nil, fmt.Errorf("save promo %v: %w", promo.Code, err)
	}

	r.l.LogInfo("Promo %v saved: %v%%, active %v", promo.Code, promo.DiscountPercent, promo.Active)

	return promo, nil
}

func (r *Registry) SetActive(ctx context.Context, id string, active bool) (*booking.PromoCode, error) {
	promo, err := r.storage.GetPromo(ctx, id)
	if errors.Is(err, booking.ErrRecordNotFound) {
		return nil, fmt.Errorf("promo %v: %w", id, ErrPromoNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("get promo %v: %w", id, err)
	}

	promo.Active = active

	if err := r.storage.SavePromo(ctx, promo); err != nil {
		return nil, fmt.Errorf("save promo %v: %w", id, err)
	}

	r.l.LogInfo("Promo %v active set to %v", promo.Code, active)

	return promo, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	err := r.storage.DeletePromo(ctx, id)
	if errors.Is(err, booking.ErrRecordNotFound) {
		return fmt.Errorf("promo %v: %w", id, ErrPromoNotFound)
	}

	if err != nil {
		return fmt.Errorf("delete promo %v: %w", id, err)
	}

	r.l.LogInfo("Promo %v deleted", id)

	return nil
}
