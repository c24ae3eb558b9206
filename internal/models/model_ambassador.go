package models

import (
	"time"

	"github.com/racebio/promoter/pkg/types"
)

// Ambassador is a referral partner earning commission on promo-code-driven
// upgrades. The Total* columns are aggregates over the Commission and
// PromoCodeUsage rows owned (through promo codes) by this ambassador; the
// redemption engine maintains them inside the same transaction as the source
// records and is their only writer.
type Ambassador struct {
	ID             string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name           string                 `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email          string                 `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone          *string                `gorm:"column:phone;type:varchar(64);default:null" json:"phone"`
	CommissionRate float64                `gorm:"column:commission_rate;not null;default:20" json:"commission_rate"`
	CommissionType types.CommissionType   `gorm:"column:commission_type;type:varchar(32);not null;default:'recurring'" json:"commission_type"`
	Status         types.AmbassadorStatus `gorm:"column:status;type:varchar(32);not null;default:'active';index" json:"status"`

	TotalReferrals  int64   `gorm:"column:total_referrals;not null;default:0" json:"total_referrals"`
	TotalRevenue    float64 `gorm:"column:total_revenue;not null;default:0" json:"total_revenue"`
	TotalCommission float64 `gorm:"column:total_commission;not null;default:0" json:"total_commission"`

	Notes     *string   `gorm:"column:notes;type:text;default:null" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PromoCodes []*PromoCode `gorm:"foreignKey:AmbassadorID" json:"promo_codes,omitempty"`
}

func (Ambassador) TableName() string {
	return "ambassador"
}

func (a *Ambassador) Active() bool {
	return a != nil && a.Status == types.AmbassadorStatusActive
}
