package redemption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	promoconfig "github.com/racebio/promoter/pkg/config"
	"github.com/racebio/promoter/pkg/types"
)

type DirectApplyRequest struct {
	AccountID string             `json:"account_id"`
	Plan      types.ExternalPlan `json:"plan"`
	PromoCode string             `json:"promo_code"`
}

type DirectApplyResult struct {
	AccountID   string                       `json:"account_id"`
	Plan        types.ExternalPlan           `json:"plan"`
	TrialEndsAt *time.Time                   `json:"trial_ends_at,omitempty"`
	Code        *promoconfig.DirectPromoCode `json:"-"`
}

// DirectApply is the simple static-table path: a configured code sets the
// account plan outright. It writes no usage, commission or ambassador rows;
// only the account entitlement changes.
func (e *Engine) DirectApply(ctx context.Context, req *DirectApplyRequest) (*DirectApplyResult, error) {
	if req == nil || req.AccountID == "" {
		return nil, apperr.Validationf("missing account_id")
	}
	if !req.Plan.Valid() {
		return nil, apperr.Validationf("unknown plan %q", req.Plan)
	}

	dc := e.cfg.GetDirectPromoCode(req.PromoCode)
	if dc == nil {
		return nil, apperr.NotFoundf("promo code %s", req.PromoCode)
	}
	if dc.Plan != req.Plan {
		return nil, apperr.Validationf("promo code %s does not grant plan %s", dc.Code, req.Plan)
	}

	now := e.now()
	var acct models.Account
	if err := e.db.WithContext(ctx).Where("id = ?", req.AccountID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("account %s", req.AccountID)
		}
		return nil, apperr.Persistence(fmt.Errorf("load account: %w", err))
	}

	pc := &models.PromoCode{Plan: dc.Plan, DurationDays: dc.DurationDays}
	if err := e.applyEntitlement(e.db.WithContext(ctx), &acct, pc, now); err != nil {
		return nil, apperr.Persistence(err)
	}

	res := &DirectApplyResult{AccountID: acct.ID, Plan: dc.Plan, Code: dc}
	if dc.DurationDays != nil {
		endsAt := now.Add(time.Duration(*dc.DurationDays) * 24 * time.Hour)
		res.TrialEndsAt = &endsAt
	}
	e.log.Infow("direct promo applied", "account_id", acct.ID, "code", dc.Code, "plan", dc.Plan)
	return res, nil
}
