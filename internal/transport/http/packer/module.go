package packer

import (
	"go.uber.org/fx"

	packersvc "github.com/Additional-Code/fleet/internal/service/packer"
)

// Module wires HTTP packer handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *packersvc.Service) Workflow { return s },
		NewHandler,
	),
	fx.Invoke(Register),
)
