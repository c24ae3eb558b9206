package promocode

import "go.uber.org/fx"

// Module exposes the promo code registry via Fx.
var Module = fx.Options(
	fx.Provide(NewRegistry),
)
