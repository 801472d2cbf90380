package auth

import (
	"go.uber.org/fx"

	authsvc "github.com/Additional-Code/fleet/internal/service/auth"
)

// Module wires HTTP auth handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *authsvc.Service) Authenticator { return s },
		NewHandler,
	),
	fx.Invoke(Register),
)
