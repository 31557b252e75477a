package generator

import "go.uber.org/fx"

// Module exposes the generator via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
