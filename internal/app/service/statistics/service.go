package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
)

// Daily redemption statistics for the admin dashboard: per-day redemption
// counts, attributed revenue and accrued commission, optionally scoped to
// one ambassador.

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type RedemptionStatisticRequest struct {
	StartDate    string `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate      string `json:"end_date"`   // YYYY-MM-DD, inclusive
	AmbassadorID string `json:"ambassador_id,omitempty"`
}

type DailyRedemptionStat struct {
	Date       string  `json:"date"`
	Count      int64   `json:"count"`
	Revenue    float64 `json:"revenue"`
	Commission float64 `json:"commission"`
}

type RedemptionStatisticResponse struct {
	Items []*DailyRedemptionStat `json:"items"`

	TotalCount      int64   `json:"total_count"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalCommission float64 `json:"total_commission"`
}

const dateLayout = "2006-01-02"

// dayExpr returns the dialect-appropriate day-bucket expression.
func (s *Service) dayExpr(column string) string {
	if s.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
}

func (s *Service) GetDailyRedemptionStatistic(ctx context.Context, req *RedemptionStatisticRequest) (*RedemptionStatisticResponse, error) {
	if req == nil {
		return nil, apperr.Validationf("nil request")
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, apperr.Validationf("invalid start_date %q", req.StartDate)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, apperr.Validationf("invalid end_date %q", req.EndDate)
	}
	if end.Before(start) {
		return nil, apperr.Validationf("end_date before start_date")
	}
	endExclusive := end.Add(24 * time.Hour)

	type row struct {
		Day        string
		Cnt        int64
		Revenue    float64
		Commission float64
	}

	day := s.dayExpr("promo_code_usage.created_at")
	q := s.db.WithContext(ctx).Model(&models.PromoCodeUsage{}).
		Select(day + " as day, count(*) as cnt, coalesce(sum(promo_code_usage.final_amount), 0) as revenue, coalesce(sum(commission.amount), 0) as commission").
		Joins("LEFT JOIN commission ON commission.usage_id = promo_code_usage.id").
		Where("promo_code_usage.created_at >= ? AND promo_code_usage.created_at < ?", start, endExclusive).
		Group("day").
		Order("day asc")
	if req.AmbassadorID != "" {
		q = q.Where("promo_code_usage.ambassador_id = ?", req.AmbassadorID)
	}

	var rows []*row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("daily redemption statistic: %w", err))
	}

	resp := &RedemptionStatisticResponse{
		Items: lo.Map(rows, func(r *row, _ int) *DailyRedemptionStat {
			return &DailyRedemptionStat{Date: r.Day, Count: r.Cnt, Revenue: r.Revenue, Commission: r.Commission}
		}),
	}
	for _, r := range rows {
		resp.TotalCount += r.Cnt
		resp.TotalRevenue += r.Revenue
		resp.TotalCommission += r.Commission
	}
	return resp, nil
}
