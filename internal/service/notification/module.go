package notification

import (
	"go.uber.org/fx"

	notificationrepo "github.com/Additional-Code/fleet/internal/repository/notification"
)

// Module provides the notification service to Fx.
var Module = fx.Provide(
	func(r *notificationrepo.Repository) Store { return r },
	NewService,
)
