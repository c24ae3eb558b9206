package ambassador

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	"github.com/racebio/promoter/pkg/config"
	"github.com/racebio/promoter/pkg/tool"
	"github.com/racebio/promoter/pkg/types"
)

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log}
}

type CreateRequest struct {
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          *string              `json:"phone,omitempty"`
	CommissionRate *float64             `json:"commission_rate,omitempty"`
	CommissionType types.CommissionType `json:"commission_type,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
}

// Create registers a referral partner. Rate defaults to 20, type to
// recurring; a duplicate email is a conflict.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Ambassador, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validationf("missing name")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validationf("invalid email %q", req.Email)
	}

	rate := 20.0
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	if rate < 0 || rate > 100 {
		return nil, apperr.Validationf("commission rate %v out of range", rate)
	}
	ctype := req.CommissionType
	if ctype == "" {
		ctype = types.CommissionTypeRecurring
	}
	if !ctype.Valid() {
		return nil, apperr.Validationf("unknown commission type %q", ctype)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ambassador{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("check duplicate email: %w", err))
	}
	if count > 0 {
		return nil, apperr.Conflictf("ambassador with email %s already exists", email)
	}

	amb := &models.Ambassador{
		ID:             tool.GenerateUUIDV7(),
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Phone:          req.Phone,
		CommissionRate: rate,
		CommissionType: ctype,
		Status:         types.AmbassadorStatusActive,
		Notes:          req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(amb).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("create ambassador: %w", err))
	}
	s.log.Infow("ambassador created", "ambassador_id", amb.ID, "email", amb.Email)
	return amb, nil
}

type ListItem struct {
	*models.Ambassador
	PromoCodeCount int `json:"promo_code_count"`
	UsageCount     int64 `json:"usage_count"`
}

// List returns ambassadors with promo codes preloaded plus count summaries,
// optionally filtered by status.
func (s *Service) List(ctx context.Context, statusFilter types.AmbassadorStatus) ([]*ListItem, error) {
	q := s.db.WithContext(ctx).Preload("PromoCodes").Order("created_at desc")
	if statusFilter != "" {
		q = q.Where("status = ?", statusFilter)
	}
	var ambs []*models.Ambassador
	if err := q.Find(&ambs).Error; err != nil {
		return nil, apperr.Persistence(fmt.Errorf("list ambassadors: %w", err))
	}

	items := lo.Map(ambs, func(a *models.Ambassador, _ int) *ListItem {
		return &ListItem{Ambassador: a, PromoCodeCount: len(a.PromoCodes), UsageCount: a.TotalReferrals}
	})
	return items, nil
}

// Get resolves one ambassador.
func (s *Service) Get(ctx context.Context, id string) (*models.Ambassador, error) {
	var amb models.Ambassador
	if err := s.db.WithContext(ctx).Preload("PromoCodes").Where("id = ?", id).First(&amb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("ambassador %s", id)
		}
		return nil, apperr.Persistence(fmt.Errorf("get ambassador: %w", err))
	}
	return &amb, nil
}
