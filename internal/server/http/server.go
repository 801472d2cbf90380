package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/metrics"
	"github.com/Additional-Code/fleet/internal/observability"
	"github.com/Additional-Code/fleet/internal/presentation/http/middleware"
	"github.com/Additional-Code/fleet/internal/presentation/http/request"
	"github.com/Additional-Code/fleet/internal/presentation/http/response"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

// Module exposes the HTTP server lifecycle to Fx.
var Module = fx.Module("http_server",
	fx.Provide(NewEcho),
	fx.Invoke(Run),
)

// EchoParams collects router dependencies.
type EchoParams struct {
	fx.In

	Config        config.Config
	Observability *observability.Manager `optional:"true"`
	Metrics       *metrics.Metrics       `optional:"true"`
	Logger        *zap.Logger
}

// NewEcho configures the Echo router with tracing, metrics, validation and
// the envelope error handler.
func NewEcho(p EchoParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = request.NewValidator()
	e.HTTPErrorHandler = errorHandler(p.Logger)

	obs := p.Observability
	if obs != nil && obs.TracingEnabled() {
		e.Use(otelecho.Middleware(p.Config.Observability.ServiceName))
	}
	e.Use(middleware.Metrics(p.Metrics))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if obs != nil && obs.MetricsEnabled() && obs.MetricsHandler() != nil {
		e.GET(p.Config.Observability.PrometheusPath, echo.WrapHandler(obs.MetricsHandler()))
	}

	return e
}

// errorHandler renders router-level failures (unknown route, wrong method,
// panics surfaced by echo) in the response envelope.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var appErr error = errorbank.From(err)
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			appErr = fromHTTPError(httpErr)
		}
		if errorbank.IsKind(appErr, errorbank.KindInternal) {
			logger.Error("http request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		if buildErr := response.Fail(c, appErr); buildErr != nil {
			logger.Error("write error response", zap.Error(buildErr))
		}
	}
}

func fromHTTPError(he *echo.HTTPError) error {
	msg := http.StatusText(he.Code)
	if s, ok := he.Message.(string); ok && s != "" {
		msg = s
	}
	switch he.Code {
	case http.StatusNotFound:
		return errorbank.NotFound(msg)
	case http.StatusUnauthorized:
		return errorbank.Unauthorized(msg)
	case http.StatusForbidden:
		return errorbank.Forbidden(msg)
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return errorbank.Validation(msg, errorbank.WithDetail("status", he.Code))
	default:
		return errorbank.Internal(msg, errorbank.WithCause(he))
	}
}

// Run starts the HTTP server and ties it to the Fx lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, e *echo.Echo, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
