package packer

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/fleet/internal/messaging"
	orderrepo "github.com/Additional-Code/fleet/internal/repository/order"
)

// Module provides the packer service to Fx.
var Module = fx.Provide(
	func(r *orderrepo.Repository) OrderStore { return r },
	func(p *messaging.EventPublisher) EventPublisher { return p },
	NewService,
)
