package ambassador

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	"github.com/racebio/promoter/pkg/types"
)

type ScanUsagesRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanUsagesResponse struct {
	Items []*models.PromoCodeUsage `json:"items"`
	Total int64                    `json:"total"`
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

var usageSortColumns = map[string]bool{
	"created_at":   true,
	"final_amount": true,
	"plan":         true,
}

// ScanUsages implements the paginated admin listing over redemption records.
func (s *Service) ScanUsages(ctx context.Context, req *ScanUsagesRequest) (*ScanUsagesResponse, error) {
	if req == nil {
		return nil, apperr.Validationf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.PromoCodeUsage{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("count usages: %w", err))
	}

	sortBy := req.SortBy
	if !usageSortColumns[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := req.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	var items []*models.PromoCodeUsage
	if err := tx.Order(sortBy + " " + sortOrder).Offset(req.From).Limit(req.Size).Find(&items).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("scan usages: %w", err))
	}

	return &ScanUsagesResponse{Items: items, Total: total}, nil
}
