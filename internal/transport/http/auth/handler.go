package auth

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/fleet/internal/dto"
	"github.com/Additional-Code/fleet/internal/identity"
	"github.com/Additional-Code/fleet/internal/presentation/http/request"
	"github.com/Additional-Code/fleet/internal/presentation/http/response"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/fleet/transport/http/auth")

// Authenticator is the sign-in behaviour exposed over HTTP.
type Authenticator interface {
	SignIn(ctx context.Context, number string) (*dto.ChallengeResponse, error)
	ValidateOTP(ctx context.Context, number, code, session string) (*dto.SignInResponse, error)
	PackerSignIn(ctx context.Context, email, password string) (*dto.SignInResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Tokens, error)
	SignOut(ctx context.Context, refreshToken string) error
}

// Handler exposes sign-in endpoints over HTTP.
type Handler struct {
	svc Authenticator
}

// NewHandler constructs an auth Handler.
func NewHandler(svc Authenticator) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance. None of them require a token.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/auth")
	g.POST("/signin", h.signIn)
	g.POST("/validate-otp", h.validateOTP)
	g.POST("/refresh", h.refresh)
	g.POST("/signout", h.signOut)
	e.POST("/packer/signin", h.packerSignIn)
}

func (h *Handler) signIn(c echo.Context) error {
	b := response.New(c)
	var req dto.SignInRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.signIn")
	defer span.End()

	res, err := h.svc.SignIn(ctx, req.Number)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(res).Build()
}

func (h *Handler) validateOTP(c echo.Context) error {
	b := response.New(c)
	var req dto.ValidateOTPRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.validateOTP")
	defer span.End()

	res, err := h.svc.ValidateOTP(ctx, req.Number, req.Code, req.Session)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(res).Build()
}

func (h *Handler) packerSignIn(c echo.Context) error {
	b := response.New(c)
	var req dto.PackerSignInRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.packerSignIn")
	defer span.End()

	res, err := h.svc.PackerSignIn(ctx, req.Email, req.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(res).Build()
}

func (h *Handler) refresh(c echo.Context) error {
	b := response.New(c)
	var req dto.RefreshRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.refresh")
	defer span.End()

	tokens, err := h.svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(tokens).Build()
}

func (h *Handler) signOut(c echo.Context) error {
	b := response.New(c)
	var req dto.RefreshRequest
	if err := request.Bind(c, &req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.signOut")
	defer span.End()

	if err := h.svc.SignOut(ctx, req.RefreshToken); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.Message{Message: "signed out"}).Build()
}
