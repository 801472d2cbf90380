package identity

import (
	"go.uber.org/fx"

	userrepo "github.com/Additional-Code/fleet/internal/repository/user"
)

// Module wires the identity provider, SMS sender and token issuer.
var Module = fx.Provide(
	NewSMSSender,
	NewTokenIssuer,
	func(r *userrepo.Repository) UserLookup { return r },
	fx.Annotate(NewLocalProvider, fx.As(new(Provider))),
)
