package models

import (
	"time"

	"github.com/racebio/promoter/pkg/types"
)

// Account is one subscription holder. Trial state is carried on the row:
// TrialEndsAt is set iff the account is currently on a trial, and Plan then
// already equals the internal form of TrialPlan (the trial is applied at
// grant time; the sweep only reverts it).
type Account struct {
	ID   string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Plan types.InternalPlan `gorm:"column:plan;type:varchar(32);not null;default:'FREE'" json:"plan"`
	// TrialEndsAt is the trial expiry; nil when the account is not on a trial.
	TrialEndsAt *time.Time `gorm:"column:trial_ends_at;default:null;index" json:"trial_ends_at"`
	// TrialPlan is the external plan the trial granted, reverted from on expiry.
	TrialPlan *types.ExternalPlan `gorm:"column:trial_plan;type:varchar(32);default:null" json:"trial_plan"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}

func (a *Account) OnTrial() bool {
	return a != nil && a.TrialEndsAt != nil
}

// TrialExpired reports whether the trial window has elapsed at t, inclusive.
func (a *Account) TrialExpired(t time.Time) bool {
	return a.OnTrial() && !a.TrialEndsAt.After(t)
}
