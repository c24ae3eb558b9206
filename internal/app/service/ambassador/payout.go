package ambassador

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	"github.com/racebio/promoter/pkg/tool"
	"github.com/racebio/promoter/pkg/types"
)

// MarkCommissionPaid transitions one commission pending -> paid. Amount,
// rate snapshot and the ambassador aggregates are never touched here; the
// payout settles money already accrued.
func (s *Service) MarkCommissionPaid(ctx context.Context, commissionID string) (*models.Commission, error) {
	var updated models.Commission

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Commission
		if err := tx.Where("id = ?", commissionID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("commission %s", commissionID)
			}
			return fmt.Errorf("load commission: %w", err)
		}
		if c.Status == types.CommissionStatusPaid {
			return apperr.Conflictf("commission %s already paid", commissionID)
		}
		if c.Status == types.CommissionStatusCancelled {
			return apperr.Conflictf("commission %s is cancelled", commissionID)
		}

		before := c
		now := time.Now()
		c.Status = types.CommissionStatusPaid
		c.PaidAt = &now
		if err := tx.Model(&models.Commission{}).Where("id = ?", c.ID).Updates(map[string]any{
			"status":  c.Status,
			"paid_at": c.PaidAt,
		}).Error; err != nil {
			return fmt.Errorf("update commission status: %w", err)
		}

		logRow := &models.CommissionLog{
			ID:           tool.GenerateUUIDV7(),
			CommissionID: c.ID,
			Reason:       types.CommissionChangeReasonPayout,
			Before:       datatypes.NewJSONType(&before),
			After:        datatypes.NewJSONType(&c),
			Extra:        datatypes.JSONMap{},
		}
		if err := tx.Create(logRow).Error; err != nil {
			return fmt.Errorf("write commission log: %w", err)
		}

		updated = c
		return nil
	})

	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		return nil, apperr.Persistence(err)
	}

	s.log.Infow("commission marked paid", "commission_id", updated.ID, "amount", updated.Amount)
	return &updated, nil
}
