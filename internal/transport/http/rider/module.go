package rider

import (
	"go.uber.org/fx"

	ridersvc "github.com/Additional-Code/fleet/internal/service/rider"
)

// Module wires HTTP rider profile handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *ridersvc.Service) Profiles { return s },
		NewHandler,
	),
	fx.Invoke(Register),
)
