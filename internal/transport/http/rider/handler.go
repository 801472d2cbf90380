package rider

import (
	"context"
	"net/http"

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

var httpTracer = otel.Tracer("github.com/Additional-Code/fleet/transport/http/rider")

// Profiles is the onboarding behaviour exposed over HTTP.
type Profiles interface {
	GetProfile(ctx context.Context, id string) (*entity.User, error)
	Register(ctx context.Context, reg dto.Registration) (*entity.User, error)
	UpdatePersonal(ctx context.Context, id string, details entity.PersonalDetails) (*entity.User, error)
	UpdateBank(ctx context.Context, id string, details entity.BankDetails) (*entity.User, error)
	UpdateDocuments(ctx context.Context, id string, docs []entity.Document) (*entity.User, error)
	UpdateDocument(ctx context.Context, id string, doc entity.Document) (*entity.User, error)
	SubmitProfile(ctx context.Context, id string) (*entity.User, error)
}

// Handler exposes rider profile endpoints over HTTP.
type Handler struct {
	svc Profiles
}

// NewHandler constructs a rider Handler.
func NewHandler(svc Profiles) *Handler {
	return &Handler{svc: svc}
}

// Register routes. Registration is public; every other route belongs to the
// rider named in the path.
func Register(e *echo.Echo, h *Handler, authz *middleware.Authorizer) {
	e.POST("/rider", h.register)

	g := e.Group("/rider/:id", authz.RequireRole(entity.RoleRider, "id"))
	g.GET("", h.get)
	g.PUT("/personal", h.updatePersonal)
	g.PUT("/bank", h.updateBank)
	g.PUT("/documents", h.updateDocuments)
	g.PUT("/document", h.updateDocument)
	g.POST("/submit", h.submit)
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var req dto.RegisterRiderRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "riders.register")
	defer span.End()

	u, err := h.svc.Register(ctx, req.ToRegistration())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(u).Build()
}

func (h *Handler) get(c echo.Context) error {
	ctx, span := h.span(c, "riders.get")
	defer span.End()

	u, err := h.svc.GetProfile(ctx, c.Param("id"))
	return respond(c, u, err)
}

func (h *Handler) updatePersonal(c echo.Context) error {
	var req dto.PersonalDetailsRequest
	if err := request.Bind(c, &req); err != nil {
		return response.Fail(c, err)
	}
	ctx, span := h.span(c, "riders.updatePersonal")
	defer span.End()

	u, err := h.svc.UpdatePersonal(ctx, c.Param("id"), req.ToEntity())
	return respond(c, u, err)
}

func (h *Handler) updateBank(c echo.Context) error {
	var req dto.BankDetailsRequest
	if err := request.Bind(c, &req); err != nil {
		return response.Fail(c, err)
	}
	ctx, span := h.span(c, "riders.updateBank")
	defer span.End()

	u, err := h.svc.UpdateBank(ctx, c.Param("id"), req.ToEntity())
	return respond(c, u, err)
}

func (h *Handler) updateDocuments(c echo.Context) error {
	var req dto.DocumentsRequest
	if err := request.Bind(c, &req); err != nil {
		return response.Fail(c, err)
	}
	ctx, span := h.span(c, "riders.updateDocuments")
	defer span.End()

	u, err := h.svc.UpdateDocuments(ctx, c.Param("id"), req.ToEntity())
	return respond(c, u, err)
}

func (h *Handler) updateDocument(c echo.Context) error {
	var req dto.DocumentUpdateRequest
	if err := request.Bind(c, &req); err != nil {
		return response.Fail(c, err)
	}
	ctx, span := h.span(c, "riders.updateDocument")
	defer span.End()

	u, err := h.svc.UpdateDocument(ctx, c.Param("id"), req.Document.ToEntity())
	return respond(c, u, err)
}

func (h *Handler) submit(c echo.Context) error {
	ctx, span := h.span(c, "riders.submit")
	defer span.End()

	u, err := h.svc.SubmitProfile(ctx, c.Param("id"))
	return respond(c, u, err)
}

func (h *Handler) span(c echo.Context, name string) (context.Context, trace.Span) {
	return httpTracer.Start(c.Request().Context(), name, trace.WithAttributes(attribute.String("rider.id", c.Param("id"))))
}

func respond(c echo.Context, u *entity.User, err error) error {
	if err != nil {
		return response.Fail(c, err)
	}
	return response.OK(c, u)
}
