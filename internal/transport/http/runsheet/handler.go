package runsheet

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

var httpTracer = otel.Tracer("github.com/Additional-Code/fleet/transport/http/runsheet")

// Engine is the runsheet behaviour exposed over HTTP.
type Engine interface {
	List(ctx context.Context, riderID string) ([]dto.RunsheetSummary, error)
	Get(ctx context.Context, riderID, runsheetID string) (*dto.RunsheetDetail, error)
	Accept(ctx context.Context, runsheetID string) error
	ConfirmOrder(ctx context.Context, riderID, runsheetID, orderID, image, via string) error
	CancelOrder(ctx context.Context, riderID, runsheetID, orderID, reason string) (string, error)
}

// Handler exposes rider runsheet endpoints over HTTP.
type Handler struct {
	svc Engine
}

// NewHandler constructs a runsheet Handler.
func NewHandler(svc Engine) *Handler {
	return &Handler{svc: svc}
}

// Register routes under /rider/:id/runsheet for the owning rider.
func Register(e *echo.Echo, h *Handler, authz *middleware.Authorizer) {
	g := e.Group("/rider/:id/runsheet", authz.RequireRole(entity.RoleRider, "id"))
	g.GET("", h.list)
	g.GET("/:runsheetId", h.get)
	g.GET("/:runsheetId/accept", h.accept)
	g.PUT("/:runsheetId/order/:orderId/complete", h.complete)
	g.PUT("/:runsheetId/order/:orderId/cancel", h.cancel)
}

func (h *Handler) list(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "runsheets.list", trace.WithAttributes(attribute.String("rider.id", c.Param("id"))))
	defer span.End()

	items, err := h.svc.List(ctx, c.Param("id"))
	if err != nil {
		return response.Fail(c, err)
	}
	return response.New(c).WithData(items).WithMeta("count", len(items)).Build()
}

func (h *Handler) get(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "runsheets.get", trace.WithAttributes(attribute.String("runsheet.id", c.Param("runsheetId"))))
	defer span.End()

	rs, err := h.svc.Get(ctx, c.Param("id"), c.Param("runsheetId"))
	if err != nil {
		return response.Fail(c, err)
	}
	return response.OK(c, rs)
}

func (h *Handler) accept(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "runsheets.accept", trace.WithAttributes(attribute.String("runsheet.id", c.Param("runsheetId"))))
	defer span.End()

	if err := h.svc.Accept(ctx, c.Param("runsheetId")); err != nil {
		return response.Fail(c, err)
	}
	return response.New(c).WithData(dto.Message{Message: "runsheet accepted"}).Build()
}

func (h *Handler) complete(c echo.Context) error {
	b := response.New(c)

	var req dto.CompleteOrderRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "runsheets.completeOrder", trace.WithAttributes(
		attribute.String("runsheet.id", c.Param("runsheetId")),
		attribute.String("order.id", c.Param("orderId")),
	))
	defer span.End()

	if err := h.svc.ConfirmOrder(ctx, c.Param("id"), c.Param("runsheetId"), c.Param("orderId"), req.Image, req.Via); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.Message{Message: "order delivered"}).Build()
}

func (h *Handler) cancel(c echo.Context) error {
	b := response.New(c)

	var req dto.CancelOrderRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "runsheets.cancelOrder", trace.WithAttributes(
		attribute.String("runsheet.id", c.Param("runsheetId")),
		attribute.String("order.id", c.Param("orderId")),
	))
	defer span.End()

	status, err := h.svc.CancelOrder(ctx, c.Param("id"), c.Param("runsheetId"), c.Param("orderId"), req.Reason)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.Message{Message: "order " + status}).WithMeta("status", status).Build()
}
