package identity

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/entity"
	userrepo "github.com/Additional-Code/fleet/internal/repository/user"
)

const (
	challengeKeyPrefix = "otp:session:"
	maxChallengeTries  = 3
)

// Provider verifies who a caller is. It never issues tokens.
type Provider interface {
	// StartChallenge sends a one-time code to number and returns the session that must accompany the answer.
	StartChallenge(ctx context.Context, number string) (string, error)
	// RespondToChallenge checks code against the session opened for number.
	RespondToChallenge(ctx context.Context, number, code, session string) error
	// VerifyPassword returns the user owning email when password matches.
	VerifyPassword(ctx context.Context, email, password string) (*entity.User, error)
}

// UserLookup finds users by email for password sign-in.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

type challenge struct {
	Number   string `json:"number"`
	Code     string `json:"code"`
	Attempts int    `json:"attempts"`
}

// LocalProvider keeps OTP challenges in the cache and checks bcrypt password hashes.
type LocalProvider struct {
	store       cache.Store
	sms         SMSSender
	users       UserLookup
	logger      *zap.Logger
	codeLength  int
	ttl         time.Duration
	countryCode string
}

// NewLocalProvider builds a LocalProvider from configuration.
func NewLocalProvider(cfg config.Config, store cache.Store, sms SMSSender, users UserLookup, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{
		store:       store,
		sms:         sms,
		users:       users,
		logger:      logger,
		codeLength:  cfg.Auth.OTPLength,
		ttl:         cfg.Auth.OTPTTL,
		countryCode: cfg.Auth.NumberCountryCode,
	}
}

var _ Provider = (*LocalProvider)(nil)

// StartChallenge generates a code, stores it under a fresh session and texts it to number.
func (p *LocalProvider) StartChallenge(ctx context.Context, number string) (string, error) {
	code, err := GenerateCode(p.codeLength)
	if err != nil {
		return "", err
	}
	session := uuid.NewString()

	if err := p.saveChallenge(ctx, session, challenge{Number: number, Code: code}); err != nil {
		return "", err
	}

	msg := fmt.Sprintf("%s is your verification code. It expires in %d minutes.", code, int(p.ttl.Minutes()))
	if err := p.sms.Send(ctx, p.countryCode+number, msg); err != nil {
		_ = p.store.Delete(ctx, challengeKeyPrefix+session)
		return "", fmt.Errorf("deliver otp: %w", err)
	}
	return session, nil
}

// RespondToChallenge consumes the session on success. A wrong code keeps the
// session alive until maxChallengeTries answers have been given.
func (p *LocalProvider) RespondToChallenge(ctx context.Context, number, code, session string) error {
	key := challengeKeyPrefix + session
	raw, err := p.store.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return ErrChallengeExpired
	}
	if err != nil {
		return fmt.Errorf("load otp session: %w", err)
	}

	var ch challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return fmt.Errorf("decode otp session: %w", err)
	}
	if ch.Number != number {
		return ErrChallengeExpired
	}

	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) == 1 {
		if err := p.store.Delete(ctx, key); err != nil && p.logger != nil {
			p.logger.Warn("otp session cleanup failed", zap.Error(err))
		}
		return nil
	}

	ch.Attempts++
	if ch.Attempts >= maxChallengeTries {
		_ = p.store.Delete(ctx, key)
		return ErrChallengeExpired
	}
	if err := p.saveChallenge(ctx, session, ch); err != nil {
		return err
	}
	return ErrInvalidCode
}

// VerifyPassword checks password against the stored bcrypt hash.
func (p *LocalProvider) VerifyPassword(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := p.users.GetByEmail(ctx, email)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (p *LocalProvider) saveChallenge(ctx context.Context, session string, ch challenge) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, challengeKeyPrefix+session, payload, p.ttl); err != nil {
		return fmt.Errorf("store otp session: %w", err)
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for User.PasswordHash.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
