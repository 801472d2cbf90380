package identity

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/entity"
)

var otpInMessage = regexp.MustCompile(`^(\d{6}) is your verification code`)

func newTestProvider(store *memStore, sms *recordingSender, users UserLookup) *LocalProvider {
	cfg := config.Config{Auth: config.Auth{OTPLength: 6, OTPTTL: 3 * time.Minute, NumberCountryCode: "+91"}}
	return NewLocalProvider(cfg, store, sms, users, zap.NewNop())
}

func sentCode(t *testing.T, sms *recordingSender) string {
	t.Helper()
	m := otpInMessage.FindStringSubmatch(sms.message)
	require.Len(t, m, 2, "message %q", sms.message)
	return m[1]
}

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code, err := GenerateCode(6)
		require.NoError(t, err)
		require.Regexp(t, `^\d{6}$`, code)
	}

	_, err := GenerateCode(0)
	require.Error(t, err)
}

func TestLocalProvider_ChallengeRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	sms := &recordingSender{}
	p := newTestProvider(store, sms, stubUsers{})

	session, err := p.StartChallenge(ctx, "9876543210")
	require.NoError(t, err)
	require.NotEmpty(t, session)
	require.Equal(t, "+919876543210", sms.to)
	require.Equal(t, 3*time.Minute, store.ttls[challengeKeyPrefix+session])

	code := sentCode(t, sms)
	require.NoError(t, p.RespondToChallenge(ctx, "9876543210", code, session))

	// Sessions are single use.
	require.ErrorIs(t, p.RespondToChallenge(ctx, "9876543210", code, session), ErrChallengeExpired)
}

func TestLocalProvider_WrongCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sms := &recordingSender{}
	p := newTestProvider(newMemStore(), sms, stubUsers{})

	session, err := p.StartChallenge(ctx, "9876543210")
	require.NoError(t, err)
	code := sentCode(t, sms)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	require.ErrorIs(t, p.RespondToChallenge(ctx, "9876543210", wrong, session), ErrInvalidCode)
	require.ErrorIs(t, p.RespondToChallenge(ctx, "1111111111", code, session), ErrChallengeExpired)
	require.ErrorIs(t, p.RespondToChallenge(ctx, "9876543210", wrong, session), ErrInvalidCode)
	require.ErrorIs(t, p.RespondToChallenge(ctx, "9876543210", wrong, session), ErrChallengeExpired)
	require.ErrorIs(t, p.RespondToChallenge(ctx, "9876543210", code, session), ErrChallengeExpired)
}

func TestLocalProvider_SMSFailureDropsSession(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	p := newTestProvider(store, &recordingSender{err: errBoom}, stubUsers{})

	_, err := p.StartChallenge(context.Background(), "9876543210")
	require.ErrorIs(t, err, errBoom)
	require.Empty(t, store.data)
}

func TestLocalProvider_VerifyPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	users := stubUsers{users: map[string]*entity.User{
		"packer@example.com": {ID: "PK1", Role: entity.RolePacker, PasswordHash: string(hash)},
		"nohash@example.com": {ID: "PK2", Role: entity.RolePacker},
	}}
	p := newTestProvider(newMemStore(), &recordingSender{}, users)

	u, err := p.VerifyPassword(ctx, "packer@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "PK1", u.ID)

	_, err = p.VerifyPassword(ctx, "packer@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.VerifyPassword(ctx, "nohash@example.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.VerifyPassword(ctx, "ghost@example.com", "x")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	broken := newTestProvider(newMemStore(), &recordingSender{}, stubUsers{err: errBoom})
	_, err = broken.VerifyPassword(ctx, "packer@example.com", "s3cret-pass")
	require.ErrorIs(t, err, errBoom)
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("packer-pass", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("packer-pass")))
}
