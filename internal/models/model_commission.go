package models

import (
	"time"

	"github.com/racebio/promoter/pkg/types"
)

// Commission is one accrual owed to an ambassador, tied 1:1 to a
// PromoCodeUsage. Amount and RateSnapshot are fixed at redemption time; a
// later change to the ambassador's rate must not alter existing rows. Only
// Status (and PaidAt) may transition afterwards, via the payout flow.
type Commission struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AmbassadorID string `gorm:"column:ambassador_id;type:uuid;not null;index" json:"ambassador_id"`
	AccountID    string `gorm:"column:account_id;type:uuid;not null" json:"account_id"`
	UsageID      string `gorm:"column:usage_id;type:uuid;not null;uniqueIndex" json:"usage_id"`

	Type   types.CommissionType `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Amount float64              `gorm:"column:amount;not null" json:"amount"`
	// RateSnapshot is the ambassador's commission rate at redemption time.
	RateSnapshot float64            `gorm:"column:rate_snapshot;not null" json:"rate_snapshot"`
	Plan         types.ExternalPlan `gorm:"column:plan;type:varchar(32);not null" json:"plan"`
	// RevenueBase is the final amount the commission was computed from.
	RevenueBase float64                `gorm:"column:revenue_base;not null" json:"revenue_base"`
	Status      types.CommissionStatus `gorm:"column:status;type:varchar(32);not null;default:'pending';index" json:"status"`
	// Period is the accounting bucket, formatted YYYY-MM.
	Period string     `gorm:"column:period;type:varchar(8);not null;index" json:"period"`
	PaidAt *time.Time `gorm:"column:paid_at;default:null" json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Commission) TableName() string {
	return "commission"
}
