package rider

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/fleet/internal/messaging"
	userrepo "github.com/Additional-Code/fleet/internal/repository/user"
)

// Module provides the rider profile service to Fx.
var Module = fx.Provide(
	func(r *userrepo.Repository) UserStore { return r },
	func(p *messaging.EventPublisher) EventPublisher { return p },
	NewService,
)
