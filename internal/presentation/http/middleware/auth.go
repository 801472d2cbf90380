package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/fleet/internal/identity"
	"github.com/Additional-Code/fleet/internal/presentation/http/response"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

const principalKey = "fleet.principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Number string
	Role   string
}

// AccessParser verifies bearer access tokens.
type AccessParser interface {
	ParseAccess(token string) (*identity.Claims, error)
}

// Authorizer guards routes with bearer access tokens.
type Authorizer struct {
	tokens AccessParser
}

// NewAuthorizer builds an Authorizer over the token issuer.
func NewAuthorizer(tokens *identity.TokenIssuer) *Authorizer {
	return &Authorizer{tokens: tokens}
}

// RequireRole admits callers holding a valid access token for role. When
// ownerParam is set, the path parameter of that name must equal the caller's
// user id.
func (a *Authorizer) RequireRole(role, ownerParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := a.authenticate(c)
			if err != nil {
				return response.Fail(c, err)
			}
			if p.Role != role {
				return response.Fail(c, errorbank.Forbidden("role not allowed", errorbank.WithDetail("role", p.Role)))
			}
			if ownerParam != "" && c.Param(ownerParam) != p.UserID {
				return response.Fail(c, errorbank.Forbidden("access to another user's resources is not allowed"))
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

func (a *Authorizer) authenticate(c echo.Context) (Principal, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return Principal{}, errorbank.Unauthorized("missing bearer token")
	}
	claims, err := a.tokens.ParseAccess(strings.TrimSpace(token))
	if err != nil {
		return Principal{}, errorbank.Unauthorized("invalid access token", errorbank.WithCause(err))
	}
	return Principal{UserID: claims.UserID, Number: claims.Number, Role: claims.Role}, nil
}

// PrincipalFrom returns the caller stored by RequireRole.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}
