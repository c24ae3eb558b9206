package plan

import (
	"github.com/racebio/promoter/pkg/types"
)

// Bidirectional mapping between the externally-visible plan tier and the
// identifier persisted on account rows. Unrecognized input on either side
// maps to FREE instead of erroring: defaulting to the most restrictive plan
// is the fail-safe for corrupt or stale stored values.

func ToInternal(p types.ExternalPlan) types.InternalPlan {
	switch p {
	case types.ExternalPlanFree:
		return types.InternalPlanFree
	case types.ExternalPlanPro:
		return types.InternalPlanCoach
	case types.ExternalPlanElite:
		return types.InternalPlanAthletePro
	default:
		return types.InternalPlanFree
	}
}

func ToExternal(p types.InternalPlan) types.ExternalPlan {
	switch p {
	case types.InternalPlanFree:
		return types.ExternalPlanFree
	case types.InternalPlanCoach:
		return types.ExternalPlanPro
	case types.InternalPlanAthletePro:
		return types.ExternalPlanElite
	default:
		return types.ExternalPlanFree
	}
}
