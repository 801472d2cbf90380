package dto

import (
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/identity"
)

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Number string `json:"number" validate:"required,numeric,len=10"`
}

// ChallengeResponse tells the client an OTP was sent.
type ChallengeResponse struct {
	Message string `json:"message"`
	Session string `json:"session"`
}

// ValidateOTPRequest is the body of POST /auth/validate-otp.
type ValidateOTPRequest struct {
	Number  string `json:"number" validate:"required,numeric,len=10"`
	Code    string `json:"code" validate:"required,numeric"`
	Session string `json:"session" validate:"required"`
}

// PackerSignInRequest is the body of POST /packer/signin.
type PackerSignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /auth/refresh and POST /auth/signout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// SignInResponse carries the signed-in user and their tokens.
type SignInResponse struct {
	Message string          `json:"message"`
	User    *entity.User    `json:"user"`
	Tokens  identity.Tokens `json:"tokens"`
}
