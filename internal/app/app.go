package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/database"
	"github.com/Additional-Code/fleet/internal/identity"
	"github.com/Additional-Code/fleet/internal/logger"
	"github.com/Additional-Code/fleet/internal/messaging"
	"github.com/Additional-Code/fleet/internal/metrics"
	"github.com/Additional-Code/fleet/internal/observability"
	repositoryfulfillment "github.com/Additional-Code/fleet/internal/repository/fulfillment"
	repositoryinventory "github.com/Additional-Code/fleet/internal/repository/inventory"
	repositorynotification "github.com/Additional-Code/fleet/internal/repository/notification"
	repositoryorder "github.com/Additional-Code/fleet/internal/repository/order"
	repositoryrunsheet "github.com/Additional-Code/fleet/internal/repository/runsheet"
	repositoryuser "github.com/Additional-Code/fleet/internal/repository/user"
	grpcserver "github.com/Additional-Code/fleet/internal/server/grpc"
	httpserver "github.com/Additional-Code/fleet/internal/server/http"
	serviceauth "github.com/Additional-Code/fleet/internal/service/auth"
	servicenotification "github.com/Additional-Code/fleet/internal/service/notification"
	servicepacker "github.com/Additional-Code/fleet/internal/service/packer"
	servicerider "github.com/Additional-Code/fleet/internal/service/rider"
	servicerunsheet "github.com/Additional-Code/fleet/internal/service/runsheet"
	transporthttp "github.com/Additional-Code/fleet/internal/transport/http"
	"github.com/Additional-Code/fleet/internal/worker"
	workernotification "github.com/Additional-Code/fleet/internal/worker/notification"
)

// Infra provides configuration, logging, telemetry and the storage and
// messaging connections. Migrations and seeders run on Infra alone.
var Infra = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
	metrics.Module,
	database.Module,
	cache.Module,
	messaging.Module,
)

// Repositories exposes the bun-backed stores.
var Repositories = fx.Options(
	repositoryorder.Module,
	repositoryrunsheet.Module,
	repositoryuser.Module,
	repositoryinventory.Module,
	repositorynotification.Module,
	repositoryfulfillment.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Infra,
	Repositories,
	identity.Module,
	servicerider.Module,
	serviceauth.Module,
	servicerunsheet.Module,
	servicepacker.Module,
	servicenotification.Module,
)

// HTTP wires the HTTP API and the gRPC health endpoint on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
	grpcserver.Module,
)

// Worker consumes domain events and turns them into rider notifications.
var Worker = fx.Options(
	Core,
	worker.Module,
	workernotification.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
