package notification

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/presentation/http/middleware"
	"github.com/Additional-Code/fleet/internal/presentation/http/response"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/fleet/transport/http/notification")

// Lister returns a user's visible notifications.
type Lister interface {
	List(ctx context.Context, userID string) ([]entity.Notification, error)
}

// Handler exposes rider notifications over HTTP.
type Handler struct {
	svc Lister
}

// NewHandler constructs a notification Handler.
func NewHandler(svc Lister) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, authz *middleware.Authorizer) {
	e.GET("/rider/:id/notification", h.list, authz.RequireRole(entity.RoleRider, "id"))
}

func (h *Handler) list(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.list", trace.WithAttributes(attribute.String("user.id", c.Param("id"))))
	defer span.End()

	items, err := h.svc.List(ctx, c.Param("id"))
	if err != nil {
		return response.Fail(c, err)
	}
	return response.New(c).WithData(items).WithMeta("count", len(items)).Build()
}
