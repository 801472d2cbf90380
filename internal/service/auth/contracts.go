package auth

import (
	"context"

	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/identity"
)

// TokenSource issues and checks session tokens.
type TokenSource interface {
	Issue(u *entity.User) (identity.Tokens, error)
	ParseRefresh(ctx context.Context, token string) (*identity.Claims, error)
	Revoke(ctx context.Context, claims *identity.Claims) error
}

// RiderOnboarding resolves the rider behind a verified phone number.
type RiderOnboarding interface {
	CreateOnFirstSignIn(ctx context.Context, number string) (*entity.User, error)
}
