package ambassador

import "go.uber.org/fx"

// Module exposes the ambassador service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
