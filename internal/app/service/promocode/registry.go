package promocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	"github.com/racebio/promoter/pkg/config"
	"github.com/racebio/promoter/pkg/types"
)

// Registry is the single lookup surface over both promo code variants:
// ledger-tracked codes live in the promo_code table, direct-apply codes are
// declared statically in config. Collapsing the two tables behind one
// abstraction keeps the variants from drifting apart.
type Registry struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewRegistry(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Registry {
	return &Registry{cfg: cfg, db: db, log: log}
}

// Normalize uppercases and trims a raw code for case-insensitive matching.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByCode resolves a ledger-tracked code with its owning ambassador.
func (r *Registry) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, apperr.Validationf("empty promo code")
	}
	var pc models.PromoCode
	err := r.db.WithContext(ctx).Preload("Ambassador").Where("code = ?", normalized).First(&pc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("promo code %s", normalized)
		}
		return nil, apperr.Persistence(fmt.Errorf("get promo code by code: %w", err))
	}
	return &pc, nil
}

// GetByID resolves a ledger-tracked code by identifier with its owning
// ambassador eagerly loaded for the redemption engine.
func (r *Registry) GetByID(ctx context.Context, id string) (*models.PromoCode, error) {
	if id == "" {
		return nil, apperr.Validationf("empty promo code id")
	}
	var pc models.PromoCode
	err := r.db.WithContext(ctx).Preload("Ambassador").Where("id = ?", id).First(&pc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("promo code %s", id)
		}
		return nil, apperr.Persistence(fmt.Errorf("get promo code by id: %w", err))
	}
	return &pc, nil
}

// ValidationResult is what a user probing a code gets back. Invalid codes
// carry only Valid=false; no counter moves on any path through Validate.
type ValidationResult struct {
	Valid           bool                `json:"valid"`
	Kind            types.PromoCodeKind `json:"kind,omitempty"`
	Plan            types.ExternalPlan  `json:"plan,omitempty"`
	DiscountPercent float64             `json:"discount_percent,omitempty"`
	DurationDays    *int                `json:"duration_days,omitempty"`
	Description     string              `json:"description,omitempty"`
}

// Validate is read-only and idempotent: a user can probe a code any number
// of times before committing to redemption.
func (r *Registry) Validate(ctx context.Context, code string) (*ValidationResult, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return &ValidationResult{Valid: false}, nil
	}

	if dc := r.cfg.GetDirectPromoCode(normalized); dc != nil {
		return &ValidationResult{
			Valid:        true,
			Kind:         types.PromoCodeKindDirect,
			Plan:         dc.Plan,
			DurationDays: dc.DurationDays,
			Description:  dc.Description,
		}, nil
	}

	pc, err := r.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return &ValidationResult{Valid: false}, nil
		}
		return nil, err
	}

	if !pc.Active {
		return &ValidationResult{Valid: false}, nil
	}
	if r.cfg.Promo.EnforceMaxUses && pc.Exhausted() {
		return &ValidationResult{Valid: false}, nil
	}

	return &ValidationResult{
		Valid:           true,
		Kind:            types.PromoCodeKindLedger,
		Plan:            pc.Plan,
		DiscountPercent: pc.DiscountPercent,
		DurationDays:    pc.DurationDays,
		Description:     pc.Description,
	}, nil
}
