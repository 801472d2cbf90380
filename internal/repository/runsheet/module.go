package runsheet

import "go.uber.org/fx"

// Module provides the runsheet repository to Fx.
var Module = fx.Provide(NewRepository)
