package models

import (
	"time"

	"github.com/racebio/promoter/pkg/types"
)

// PromoCode is a redeemable code owned by an ambassador. Codes are stored
// uppercase and matched case-insensitively. Rows are never deleted, only
// deactivated; CurrentUses and TotalRevenue are mutated only by redemption.
type PromoCode struct {
	ID           string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Code         string             `gorm:"column:code;type:varchar(64);not null;uniqueIndex" json:"code"`
	AmbassadorID string             `gorm:"column:ambassador_id;type:uuid;not null;index" json:"ambassador_id"`
	Plan         types.ExternalPlan `gorm:"column:plan;type:varchar(32);not null" json:"plan"`
	// DiscountPercent is the discount advertised to the redeeming user, 0-100.
	DiscountPercent float64 `gorm:"column:discount_percent;not null;default:0" json:"discount_percent"`
	// DurationDays, when set, makes redemption grant a trial of that length
	// instead of a permanent plan change.
	DurationDays *int    `gorm:"column:duration_days;default:null" json:"duration_days"`
	Description  string  `gorm:"column:description;type:text" json:"description"`
	Active       bool    `gorm:"column:active;not null;default:true" json:"active"`
	CurrentUses  int64   `gorm:"column:current_uses;not null;default:0" json:"current_uses"`
	MaxUses      *int64  `gorm:"column:max_uses;default:null" json:"max_uses"`
	TotalRevenue float64 `gorm:"column:total_revenue;not null;default:0" json:"total_revenue"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Ambassador *Ambassador `gorm:"foreignKey:AmbassadorID" json:"ambassador,omitempty"`
}

func (PromoCode) TableName() string {
	return "promo_code"
}

// Exhausted reports whether the usage ceiling has been reached. A nil
// MaxUses means unlimited.
func (p *PromoCode) Exhausted() bool {
	return p != nil && p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}
