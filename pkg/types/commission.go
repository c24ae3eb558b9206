package types

type CommissionType string

const (
	CommissionTypeRecurring CommissionType = "recurring"
	CommissionTypeOneTime   CommissionType = "one_time"
	CommissionTypeLifetime  CommissionType = "lifetime"
)

func (t CommissionType) Valid() bool {
	switch t {
	case CommissionTypeRecurring, CommissionTypeOneTime, CommissionTypeLifetime:
		return true
	}
	return false
}

type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusApproved  CommissionStatus = "approved"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

type AmbassadorStatus string

const (
	AmbassadorStatusActive   AmbassadorStatus = "active"
	AmbassadorStatusInactive AmbassadorStatus = "inactive"
)

// PromoCodeKind distinguishes the two promo code variants behind the registry.
// Ledger codes flow through the commission ledger; direct codes only set the
// account plan and write no ledger records.
type PromoCodeKind string

const (
	PromoCodeKindLedger PromoCodeKind = "ledger"
	PromoCodeKindDirect PromoCodeKind = "direct"
)

type CommissionChangeReason string

const (
	CommissionChangeReasonAccrual  CommissionChangeReason = "accrual"
	CommissionChangeReasonPayout   CommissionChangeReason = "payout"
	CommissionChangeReasonApproval CommissionChangeReason = "approval"
)
