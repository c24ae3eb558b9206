package ambassador

import (
	"context"
	"fmt"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
)

// ReconcileResult reports the stored aggregates against sums recomputed from
// the source records. Drift means some writer bypassed the redemption engine.
type ReconcileResult struct {
	AmbassadorID string `json:"ambassador_id"`

	StoredReferrals  int64   `json:"stored_referrals"`
	StoredRevenue    float64 `json:"stored_revenue"`
	StoredCommission float64 `json:"stored_commission"`

	ComputedReferrals  int64   `json:"computed_referrals"`
	ComputedRevenue    float64 `json:"computed_revenue"`
	ComputedCommission float64 `json:"computed_commission"`

	Drift    bool `json:"drift"`
	Repaired bool `json:"repaired"`
}

// Reconcile is the out-of-band safety net over the aggregate invariant: it
// recomputes referrals/revenue/commission from PromoCodeUsage and Commission
// rows and, when repair is requested, overwrites the aggregate row with the
// recomputed truth. Not a hot-path operation.
func (s *Service) Reconcile(ctx context.Context, ambassadorID string, repair bool) (*ReconcileResult, error) {
	amb, err := s.Get(ctx, ambassadorID)
	if err != nil {
		return nil, err
	}

	type usageSums struct {
		Cnt     int64
		Revenue float64
	}
	var us usageSums
	if err := s.db.WithContext(ctx).Model(&models.PromoCodeUsage{}).
		Select("count(*) as cnt, coalesce(sum(final_amount), 0) as revenue").
		Where("ambassador_id = ?", ambassadorID).
		Scan(&us).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("sum usages: %w", err))
	}

	var commissionSum float64
	if err := s.db.WithContext(ctx).Model(&models.Commission{}).
		Select("coalesce(sum(amount), 0)").
		Where("ambassador_id = ?", ambassadorID).
		Scan(&commissionSum).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("sum commissions: %w", err))
	}

	res := &ReconcileResult{
		AmbassadorID:       ambassadorID,
		StoredReferrals:    amb.TotalReferrals,
		StoredRevenue:      amb.TotalRevenue,
		StoredCommission:   amb.TotalCommission,
		ComputedReferrals:  us.Cnt,
		ComputedRevenue:    us.Revenue,
		ComputedCommission: commissionSum,
	}
	res.Drift = res.StoredReferrals != res.ComputedReferrals ||
		res.StoredRevenue != res.ComputedRevenue ||
		res.StoredCommission != res.ComputedCommission

	if res.Drift {
		s.log.Warnw("ambassador aggregate drift detected",
			"ambassador_id", ambassadorID,
			"stored_referrals", res.StoredReferrals, "computed_referrals", res.ComputedReferrals,
			"stored_revenue", res.StoredRevenue, "computed_revenue", res.ComputedRevenue,
			"stored_commission", res.StoredCommission, "computed_commission", res.ComputedCommission,
		)
		if repair {
			if err := s.db.WithContext(ctx).Model(&models.Ambassador{}).Where("id = ?", ambassadorID).Updates(map[string]any{
				"total_referrals":  res.ComputedReferrals,
				"total_revenue":    res.ComputedRevenue,
				"total_commission": res.ComputedCommission,
			}).Error; err != nil {
				return nil, apperr.Persistence(fmt.Errorf("repair aggregates: %w", err))
			}
			res.Repaired = true
		}
	}

	return res, nil
}
