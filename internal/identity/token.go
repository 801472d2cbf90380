package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/entity"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	revokedKeyPrefix = "auth:revoked:"
)

// Claims is the payload carried by fleet access and refresh tokens.
type Claims struct {
	UserID    string `json:"userId"`
	Number    string `json:"number,omitempty"`
	Role      string `json:"role"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Tokens is a signed access/refresh pair.
type Tokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	store         cache.Store
	now           func() time.Time
}

// NewTokenIssuer builds a TokenIssuer from configuration. Revoked refresh
// token ids are tracked in store.
func NewTokenIssuer(cfg config.Config, store cache.Store) *TokenIssuer {
	return &TokenIssuer{
		issuer:        cfg.Auth.Issuer,
		accessSecret:  []byte(cfg.Auth.AccessSecret),
		refreshSecret: []byte(cfg.Auth.RefreshSecret),
		accessTTL:     cfg.Auth.AccessTTL,
		refreshTTL:    cfg.Auth.RefreshTTL,
		store:         store,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Issue signs a fresh token pair for u.
func (t *TokenIssuer) Issue(u *entity.User) (Tokens, error) {
	if u == nil {
		return Tokens{}, errors.New("nil user")
	}
	now := t.now()

	access, accessExp, err := t.sign(u, tokenTypeAccess, t.accessSecret, t.accessTTL, now)
	if err != nil {
		return Tokens{}, err
	}
	refresh, _, err := t.sign(u, tokenTypeRefresh, t.refreshSecret, t.refreshTTL, now)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: accessExp}, nil
}

func (t *TokenIssuer) sign(u *entity.User, tokenType string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		UserID:    u.ID,
		Number:    u.Number,
		Role:      u.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, exp, nil
}

// ParseAccess verifies an access token and returns its claims.
func (t *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return t.parse(token, tokenTypeAccess, t.accessSecret)
}

// ParseRefresh verifies a refresh token, including its revocation state.
func (t *TokenIssuer) ParseRefresh(ctx context.Context, token string) (*Claims, error) {
	claims, err := t.parse(token, tokenTypeRefresh, t.refreshSecret)
	if err != nil {
		return nil, err
	}
	_, err = t.store.Get(ctx, revokedKeyPrefix+claims.ID)
	switch {
	case err == nil:
		return nil, ErrTokenRevoked
	case errors.Is(err, cache.ErrCacheMiss):
		return claims, nil
	default:
		return nil, fmt.Errorf("check revocation: %w", err)
	}
}

// Revoke blocks a refresh token until it would have expired anyway.
func (t *TokenIssuer) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrInvalidToken
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(t.now()); remaining > 0 {
			ttl = remaining
		}
	}
	return t.store.Set(ctx, revokedKeyPrefix+claims.ID, []byte("1"), ttl)
}

func (t *TokenIssuer) parse(token, tokenType string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType || claims.Issuer != t.issuer || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
