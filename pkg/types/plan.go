package types

// ExternalPlan is the plan tier exposed to clients and stored on promo codes.
type ExternalPlan string

const (
	ExternalPlanFree  ExternalPlan = "FREE"
	ExternalPlanPro   ExternalPlan = "PRO"
	ExternalPlanElite ExternalPlan = "ELITE"
)

// InternalPlan is the plan identifier persisted on account rows.
type InternalPlan string

const (
	InternalPlanFree       InternalPlan = "FREE"
	InternalPlanCoach      InternalPlan = "COACH"
	InternalPlanAthletePro InternalPlan = "ATHLETE_PRO"
)

func (p ExternalPlan) Valid() bool {
	switch p {
	case ExternalPlanFree, ExternalPlanPro, ExternalPlanElite:
		return true
	}
	return false
}

func (p InternalPlan) Valid() bool {
	switch p {
	case InternalPlanFree, InternalPlanCoach, InternalPlanAthletePro:
		return true
	}
	return false
}

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}
