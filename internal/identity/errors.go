package identity

import "errors"

var (
	// ErrInvalidCode is returned when an OTP answer does not match.
	ErrInvalidCode = errors.New("invalid otp code")
	// ErrChallengeExpired is returned when the session is unknown, used up or timed out.
	ErrChallengeExpired = errors.New("otp session expired")
	// ErrInvalidCredentials is returned when an email/password pair is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for malformed, expired or mis-typed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned when a refresh token was signed out.
	ErrTokenRevoked = errors.New("token revoked")
)
