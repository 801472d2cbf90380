package notification

import (
	"go.uber.org/fx"

	notificationsvc "github.com/Additional-Code/fleet/internal/service/notification"
)

// Module wires HTTP notification handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *notificationsvc.Service) Lister { return s },
		NewHandler,
	),
	fx.Invoke(Register),
)
