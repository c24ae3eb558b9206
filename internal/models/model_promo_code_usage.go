package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/racebio/promoter/pkg/types"
)

// PaymentRefs carries correlation identifiers from the upstream payment
// processor. The processor itself is out of scope; these are opaque.
type PaymentRefs struct {
	ProviderID    string `json:"provider_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	InvoiceID     string `json:"invoice_id,omitempty"`
}

// ClientMeta is audit metadata captured from the redeeming client.
type ClientMeta struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// PromoCodeUsage is the immutable record of one redemption event. Created
// once per redemption, never mutated or deleted.
type PromoCodeUsage struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	PromoCodeID  string `gorm:"column:promo_code_id;type:uuid;not null;index" json:"promo_code_id"`
	AccountID    string `gorm:"column:account_id;type:uuid;not null;index" json:"account_id"`
	AmbassadorID string `gorm:"column:ambassador_id;type:uuid;not null;index" json:"ambassador_id"`

	Plan         types.ExternalPlan `gorm:"column:plan;type:varchar(32);not null" json:"plan"`
	BillingCycle types.BillingCycle `gorm:"column:billing_cycle;type:varchar(32);not null" json:"billing_cycle"`

	OriginalAmount float64 `gorm:"column:original_amount;not null" json:"original_amount"`
	DiscountAmount float64 `gorm:"column:discount_amount;not null" json:"discount_amount"`
	FinalAmount    float64 `gorm:"column:final_amount;not null" json:"final_amount"`

	// IdempotencyKey dedupes client retries; the unique index makes a retried
	// redemption fail instead of accruing commission twice.
	IdempotencyKey *string `gorm:"column:idempotency_key;type:varchar(128);default:null;uniqueIndex" json:"idempotency_key,omitempty"`

	PaymentRefs datatypes.JSONType[*PaymentRefs] `gorm:"column:payment_refs;type:jsonb;default:'null'" json:"payment_refs"`
	ClientMeta  datatypes.JSONType[*ClientMeta]  `gorm:"column:client_meta;type:jsonb;default:'null'" json:"client_meta"`

	CreatedAt time.Time `json:"created_at"`
}

func (PromoCodeUsage) TableName() string {
	return "promo_code_usage"
}
