package redemption

import "go.uber.org/fx"

// Module exposes the redemption engine via Fx.
var Module = fx.Options(
	fx.Provide(NewEngine),
)
