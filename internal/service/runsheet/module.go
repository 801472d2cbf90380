package runsheet

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/fleet/internal/messaging"
	orderrepo "github.com/Additional-Code/fleet/internal/repository/order"
	runsheetrepo "github.com/Additional-Code/fleet/internal/repository/runsheet"
)

// Module provides the runsheet service to Fx.
var Module = fx.Provide(
	func(r *runsheetrepo.Repository) RunsheetStore { return r },
	func(r *orderrepo.Repository) OrderStore { return r },
	func(p *messaging.EventPublisher) EventPublisher { return p },
	NewService,
)
