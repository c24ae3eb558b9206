package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/racebio/promoter/pkg/types"
)

// CommissionLog records commission status transitions.
// Use case: troubleshooting payout disputes.
type CommissionLog struct {
	ID           string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CommissionID string                       `gorm:"column:commission_id;type:uuid;not null;index" json:"commission_id"`
	Reason       types.CommissionChangeReason `gorm:"column:reason;type:varchar(32);not null"`
	// Before stores the commission row before the change in JSON format.
	Before datatypes.JSONType[*Commission] `gorm:"column:before;type:jsonb;default:'null'"`
	// After stores the commission row after the change in JSON format.
	After     datatypes.JSONType[*Commission] `gorm:"column:after;type:jsonb;default:'null'"`
	Extra     datatypes.JSONMap               `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (CommissionLog) TableName() string {
	return "commission_log"
}
