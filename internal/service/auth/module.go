package auth

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/fleet/internal/identity"
	"github.com/Additional-Code/fleet/internal/service/rider"
)

// Module provides the auth service to Fx.
var Module = fx.Provide(
	func(t *identity.TokenIssuer) TokenSource { return t },
	func(r *rider.Service) RiderOnboarding { return r },
	NewService,
)
