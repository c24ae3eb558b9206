package trialsweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	"github.com/racebio/promoter/pkg/metrics"
	"github.com/racebio/promoter/pkg/types"
)

// RevertedAccount is the per-account observability record the sweep emits.
type RevertedAccount struct {
	AccountID    string              `json:"account_id"`
	PreviousPlan *types.ExternalPlan `json:"previous_plan"`
	NewPlan      types.InternalPlan  `json:"new_plan"`
	ExpiredAt    time.Time           `json:"expired_at"`
}

type Result struct {
	Count            int                `json:"count"`
	RevertedAccounts []*RevertedAccount `json:"reverted_accounts"`
}

// Service reverts expired trials back to the free tier. It holds no state of
// its own; re-running it is a no-op because a reverted account no longer
// matches the selection predicate.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger

	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Run selects every account whose trial window has elapsed (inclusive of the
// exact instant) and reverts each one independently; one account's failure
// is logged and skipped so the rest of the batch completes.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	now := s.now()

	var expired []*models.Account
	if err := s.db.WithContext(ctx).
		Where("trial_ends_at IS NOT NULL AND trial_ends_at <= ?", now).
		Find(&expired).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("select expired trials: %w", err))
	}

	result := &Result{RevertedAccounts: make([]*RevertedAccount, 0, len(expired))}
	for _, acct := range expired {
		reverted, err := s.revert(ctx, acct, now)
		if err != nil {
			s.log.Errorw("trial revert failed, skipping account",
				"account_id", acct.ID, "err", err)
			continue
		}
		result.RevertedAccounts = append(result.RevertedAccounts, reverted)
		result.Count++
		metrics.TrialRevertsTotal.Inc()
	}

	if result.Count > 0 {
		s.log.Infow("trial expiration sweep completed", "reverted", result.Count, "selected", len(expired))
	}
	return result, nil
}

func (s *Service) revert(ctx context.Context, acct *models.Account, now time.Time) (*RevertedAccount, error) {
	expiredAt := *acct.TrialEndsAt
	previous := acct.TrialPlan

	// The full predicate is re-applied in the WHERE clause: the update is a
	// no-op if another sweep run got here first, or if a redemption granted a
	// fresh trial between selection and revert.
	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND trial_ends_at IS NOT NULL AND trial_ends_at <= ?", acct.ID, now).
		Updates(map[string]any{
			"plan":          types.InternalPlanFree,
			"trial_ends_at": nil,
			"trial_plan":    nil,
			"updated_at":    s.now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("revert account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("trial for account %s no longer expired", acct.ID)
	}

	rec := &RevertedAccount{
		AccountID:    acct.ID,
		PreviousPlan: previous,
		NewPlan:      types.InternalPlanFree,
		ExpiredAt:    expiredAt,
	}
	s.log.Infow("trial reverted",
		"account_id", rec.AccountID,
		"previous_plan", rec.PreviousPlan,
		"new_plan", rec.NewPlan,
		"expired_at", rec.ExpiredAt,
	)
	return rec, nil
}
