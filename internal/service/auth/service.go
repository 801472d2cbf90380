package auth

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/dto"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/identity"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/fleet/service/auth")

// Service signs riders and packers in and manages their sessions.
type Service struct {
	provider identity.Provider
	tokens   TokenSource
	riders   RiderOnboarding
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Provider identity.Provider
	Tokens   TokenSource
	Riders   RiderOnboarding
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: p.Provider,
		tokens:   p.Tokens,
		riders:   p.Riders,
		logger:   logger,
	}
}

// SignIn sends an OTP to number and returns the challenge session.
func (s *Service) SignIn(ctx context.Context, number string) (*dto.ChallengeResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.SignIn")
	defer span.End()

	session, err := s.provider.StartChallenge(ctx, number)
	if err != nil {
		return nil, s.internal(span, "failed to send otp", err)
	}
	return &dto.ChallengeResponse{Message: "OTP sent successfully", Session: session}, nil
}

// ValidateOTP completes a phone sign-in. A number signing in for the first
// time gets an empty rider profile.
func (s *Service) ValidateOTP(ctx context.Context, number, code, session string) (*dto.SignInResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.ValidateOTP")
	defer span.End()

	err := s.provider.RespondToChallenge(ctx, number, code, session)
	switch {
	case errors.Is(err, identity.ErrInvalidCode):
		return nil, errorbank.Validation("Invalid OTP, please try again", errorbank.WithDetail("session", session))
	case errors.Is(err, identity.ErrChallengeExpired):
		return nil, errorbank.Unauthorized("otp session expired, sign in again")
	case err != nil:
		return nil, s.internal(span, "failed to verify otp", err)
	}

	u, err := s.riders.CreateOnFirstSignIn(ctx, number)
	if err != nil {
		return nil, err
	}
	if u.Role != entity.RoleRider {
		return nil, errorbank.Forbidden("number is not registered to a rider")
	}
	span.SetAttributes(attribute.String("user.id", u.ID))
	return s.signedIn(span, u)
}

// PackerSignIn signs a packer in with email and password.
func (s *Service) PackerSignIn(ctx context.Context, email, password string) (*dto.SignInResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.PackerSignIn")
	defer span.End()

	u, err := s.provider.VerifyPassword(ctx, email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return nil, errorbank.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, s.internal(span, "failed to verify password", err)
	}
	if u.Role != entity.RolePacker {
		return nil, errorbank.Forbidden("account is not a packer")
	}
	span.SetAttributes(attribute.String("user.id", u.ID))
	return s.signedIn(span, u)
}

// Refresh rotates a refresh token into a new token pair. The presented
// refresh token cannot be used again.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*identity.Tokens, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.parseRefresh(ctx, span, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return nil, s.internal(span, "failed to rotate refresh token", err)
	}

	tokens, err := s.tokens.Issue(&entity.User{ID: claims.UserID, Number: claims.Number, Role: claims.Role})
	if err != nil {
		return nil, s.internal(span, "failed to issue tokens", err)
	}
	return &tokens, nil
}

// SignOut revokes a refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.SignOut")
	defer span.End()

	claims, err := s.parseRefresh(ctx, span, refreshToken)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return s.internal(span, "failed to sign out", err)
	}
	return nil
}

func (s *Service) parseRefresh(ctx context.Context, span trace.Span, token string) (*identity.Claims, error) {
	claims, err := s.tokens.ParseRefresh(ctx, token)
	switch {
	case errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrTokenRevoked):
		return nil, errorbank.Unauthorized("invalid refresh token")
	case err != nil:
		return nil, s.internal(span, "failed to verify refresh token", err)
	}
	return claims, nil
}

func (s *Service) signedIn(span trace.Span, u *entity.User) (*dto.SignInResponse, error) {
	tokens, err := s.tokens.Issue(u)
	if err != nil {
		return nil, s.internal(span, "failed to issue tokens", err)
	}
	return &dto.SignInResponse{Message: "Signed in successfully", User: u, Tokens: tokens}, nil
}

func (s *Service) internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.Error(msg, zap.Error(err))
	return errorbank.Internal(msg, errorbank.WithCause(err))
}
