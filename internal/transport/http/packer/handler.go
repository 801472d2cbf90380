package packer

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/fleet/internal/dto"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/presentation/http/middleware"
	"github.com/Additional-Code/fleet/internal/presentation/http/request"
	"github.com/Additional-Code/fleet/internal/presentation/http/response"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/fleet/transport/http/packer")

// Workflow is the packing behaviour exposed over HTTP.
type Workflow interface {
	ListOrders(ctx context.Context, packerID string) ([]dto.PackerOrder, error)
	PackOrder(ctx context.Context, orderID, image string) error
}

// Handler exposes packer endpoints over HTTP.
type Handler struct {
	svc Workflow
}

// NewHandler constructs a packer Handler.
func NewHandler(svc Workflow) *Handler {
	return &Handler{svc: svc}
}

// Register routes under /packer/order for packers.
func Register(e *echo.Echo, h *Handler, authz *middleware.Authorizer) {
	g := e.Group("/packer/order", authz.RequireRole(entity.RolePacker, ""))
	g.GET("", h.list)
	g.PATCH("/:id", h.pack)
}

// list returns packable orders; ?packerId= narrows them to one packer.
func (h *Handler) list(c echo.Context) error {
	packerID := c.QueryParam("packerId")
	ctx, span := httpTracer.Start(c.Request().Context(), "packer.listOrders", trace.WithAttributes(attribute.String("packer.id", packerID)))
	defer span.End()

	orders, err := h.svc.ListOrders(ctx, packerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.New(c).WithData(orders).WithMeta("count", len(orders)).Build()
}

func (h *Handler) pack(c echo.Context) error {
	b := response.New(c)

	var req dto.PackOrderRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "packer.packOrder", trace.WithAttributes(attribute.String("order.id", c.Param("id"))))
	defer span.End()

	if err := h.svc.PackOrder(ctx, c.Param("id"), req.Image); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.Message{Message: "order packed"}).Build()
}
