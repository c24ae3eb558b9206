package redemption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/racebio/promoter/internal/app/service/plan"
	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	"github.com/racebio/promoter/pkg/config"
	"github.com/racebio/promoter/pkg/metrics"
	"github.com/racebio/promoter/pkg/tool"
	"github.com/racebio/promoter/pkg/types"
)

type RedeemRequest struct {
	PromoCodeID    string              `json:"promo_code_id"`
	AccountID      string              `json:"account_id"`
	PlanType       types.ExternalPlan  `json:"plan_type"`
	BillingCycle   types.BillingCycle  `json:"billing_cycle"`
	OriginalAmount float64             `json:"original_amount"`
	DiscountAmount float64             `json:"discount_amount"`
	FinalAmount    float64             `json:"final_amount"`
	PaymentRefs    *models.PaymentRefs `json:"payment_refs,omitempty"`
	ClientMeta     *models.ClientMeta  `json:"client_meta,omitempty"`
	// IdempotencyKey lets a client retry a failed call without double-accrual.
	IdempotencyKey *string `json:"idempotency_key,omitempty"`
}

type RedeemResult struct {
	Usage      *models.PromoCodeUsage `json:"usage"`
	Commission *models.Commission     `json:"commission"`
}

// Engine records a redemption atomically across the usage record, the promo
// code counters, the commission accrual and the ambassador aggregates,
// and applies the granted entitlement to the account in the same unit.
// It is the only writer of the ambassador aggregate columns.
type Engine struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger

	// test seams: usageInsertHook runs between the idempotency pre-check and
	// the usage insert, commissionInsertHook between the counter update and
	// the commission insert, to exercise race and rollback behavior
	usageInsertHook      func(tx *gorm.DB) error
	commissionInsertHook func() error
	now                  func() time.Time
}

func NewEngine(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Engine {
	return &Engine{cfg: cfg, db: db, log: log, now: time.Now}
}

func (e *Engine) validate(req *RedeemRequest) error {
	if req == nil {
		return apperr.Validationf("nil request")
	}
	if req.PromoCodeID == "" {
		return apperr.Validationf("missing promo_code_id")
	}
	if req.AccountID == "" {
		return apperr.Validationf("missing account_id")
	}
	if !req.PlanType.Valid() {
		return apperr.Validationf("unknown plan type %q", req.PlanType)
	}
	if !req.BillingCycle.Valid() {
		return apperr.Validationf("unknown billing cycle %q", req.BillingCycle)
	}
	if req.OriginalAmount <= 0 || req.FinalAmount <= 0 || req.DiscountAmount < 0 {
		return apperr.Validationf("amounts must be positive")
	}
	return nil
}

// Redeem performs the four ledger writes and the entitlement grant in one
// transaction. Any failure leaves every row at its pre-call value.
func (e *Engine) Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResult, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	now := e.now()
	var result RedeemResult
	var grantedPlan types.ExternalPlan

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pc models.PromoCode
		if err := lockForUpdate(tx).Where("id = ?", req.PromoCodeID).First(&pc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("promo code %s", req.PromoCodeID)
			}
			return fmt.Errorf("load promo code: %w", err)
		}
		if !pc.Active {
			return apperr.Conflictf("promo code %s is inactive", pc.Code)
		}
		if e.cfg.Promo.EnforceMaxUses && pc.Exhausted() {
			return apperr.Conflictf("promo code %s is exhausted", pc.Code)
		}

		var amb models.Ambassador
		if err := tx.Where("id = ?", pc.AmbassadorID).First(&amb).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("ambassador %s", pc.AmbassadorID)
			}
			return fmt.Errorf("load ambassador: %w", err)
		}

		var acct models.Account
		if err := tx.Where("id = ?", req.AccountID).First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("account %s", req.AccountID)
			}
			return fmt.Errorf("load account: %w", err)
		}

		if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
			var count int64
			if err := tx.Model(&models.PromoCodeUsage{}).
				Where("idempotency_key = ?", *req.IdempotencyKey).Count(&count).Error; err != nil {
				return fmt.Errorf("check idempotency key: %w", err)
			}
			if count > 0 {
				return apperr.Conflictf("idempotency key %s already redeemed", *req.IdempotencyKey)
			}
		}

		if e.usageInsertHook != nil {
			if err := e.usageInsertHook(tx); err != nil {
				return err
			}
		}

		usage := &models.PromoCodeUsage{
			ID:             tool.GenerateUUIDV7(),
			PromoCodeID:    pc.ID,
			AccountID:      acct.ID,
			AmbassadorID:   amb.ID,
			Plan:           req.PlanType,
			BillingCycle:   req.BillingCycle,
			OriginalAmount: req.OriginalAmount,
			DiscountAmount: req.DiscountAmount,
			FinalAmount:    req.FinalAmount,
			IdempotencyKey: req.IdempotencyKey,
			PaymentRefs:    datatypes.NewJSONType(req.PaymentRefs),
			ClientMeta:     datatypes.NewJSONType(req.ClientMeta),
		}
		if err := tx.Create(usage).Error; err != nil {
			// The count pre-check races concurrent retries; the unique index
			// on idempotency_key is the authority and its violation is the
			// same conflict.
			if req.IdempotencyKey != nil && *req.IdempotencyKey != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflictf("idempotency key %s already redeemed", *req.IdempotencyKey)
			}
			return fmt.Errorf("insert usage record: %w", err)
		}

		// Relative increments; a read-then-write of the absolute value would
		// lose updates under concurrent redemptions of the same code.
		if err := tx.Model(&models.PromoCode{}).Where("id = ?", pc.ID).Updates(map[string]any{
			"current_uses":  gorm.Expr("current_uses + 1"),
			"total_revenue": gorm.Expr("total_revenue + ?", req.FinalAmount),
		}).Error; err != nil {
			return fmt.Errorf("update promo code counters: %w", err)
		}

		if e.commissionInsertHook != nil {
			if err := e.commissionInsertHook(); err != nil {
				return err
			}
		}

		commissionAmount := req.FinalAmount * amb.CommissionRate / 100
		commission := &models.Commission{
			ID:           tool.GenerateUUIDV7(),
			AmbassadorID: amb.ID,
			AccountID:    acct.ID,
			UsageID:      usage.ID,
			Type:         amb.CommissionType,
			Amount:       commissionAmount,
			RateSnapshot: amb.CommissionRate,
			Plan:         req.PlanType,
			RevenueBase:  req.FinalAmount,
			Status:       types.CommissionStatusPending,
			Period:       tool.AccountingPeriod(now),
		}
		if err := tx.Create(commission).Error; err != nil {
			return fmt.Errorf("insert commission: %w", err)
		}

		if err := tx.Model(&models.Ambassador{}).Where("id = ?", amb.ID).Updates(map[string]any{
			"total_referrals":  gorm.Expr("total_referrals + 1"),
			"total_revenue":    gorm.Expr("total_revenue + ?", req.FinalAmount),
			"total_commission": gorm.Expr("total_commission + ?", commissionAmount),
		}).Error; err != nil {
			return fmt.Errorf("update ambassador aggregates: %w", err)
		}

		if err := e.applyEntitlement(tx, &acct, &pc, now); err != nil {
			return err
		}

		grantedPlan = pc.Plan
		result = RedeemResult{Usage: usage, Commission: commission}
		return nil
	})

	if err != nil {
		if isAppErr(err) {
			return nil, err
		}
		return nil, apperr.Persistence(err)
	}

	metrics.RedemptionsTotal.WithLabelValues(string(grantedPlan)).Inc()
	e.log.Infow("promo code redeemed",
		"promo_code_id", req.PromoCodeID,
		"account_id", req.AccountID,
		"ambassador_id", result.Commission.AmbassadorID,
		"final_amount", req.FinalAmount,
		"commission", result.Commission.Amount,
	)
	return &result, nil
}

// applyEntitlement sets the account plan from the promo grant. Codes with a
// duration grant a trial; the trial plan is applied immediately and the
// sweep reverts it after expiry.
func (e *Engine) applyEntitlement(tx *gorm.DB, acct *models.Account, pc *models.PromoCode, now time.Time) error {
	updates := map[string]any{
		"plan": plan.ToInternal(pc.Plan),
	}
	if pc.DurationDays != nil {
		endsAt := now.Add(time.Duration(*pc.DurationDays) * 24 * time.Hour)
		updates["trial_ends_at"] = endsAt
		updates["trial_plan"] = pc.Plan
	}
	if err := tx.Model(&models.Account{}).Where("id = ?", acct.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("apply entitlement: %w", err)
	}
	return nil
}

func isAppErr(err error) bool {
	return errors.Is(err, apperr.ErrValidation) ||
		errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrConflict) ||
		errors.Is(err, apperr.ErrAuthorization)
}

// lockForUpdate takes a row lock where the dialect supports it. The sqlite
// test store serializes writers anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
