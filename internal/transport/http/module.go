package http

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/fleet/internal/presentation/http/middleware"
	authtransport "github.com/Additional-Code/fleet/internal/transport/http/auth"
	notificationtransport "github.com/Additional-Code/fleet/internal/transport/http/notification"
	packertransport "github.com/Additional-Code/fleet/internal/transport/http/packer"
	ridertransport "github.com/Additional-Code/fleet/internal/transport/http/rider"
	runsheettransport "github.com/Additional-Code/fleet/internal/transport/http/runsheet"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	fx.Provide(middleware.NewAuthorizer),
	authtransport.Module,
	ridertransport.Module,
	runsheettransport.Module,
	packertransport.Module,
	notificationtransport.Module,
)
