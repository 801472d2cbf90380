package runsheet

import (
	"go.uber.org/fx"

	runsheetsvc "github.com/Additional-Code/fleet/internal/service/runsheet"
)

// Module wires HTTP runsheet handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *runsheetsvc.Service) Engine { return s },
		NewHandler,
	),
	fx.Invoke(Register),
)
