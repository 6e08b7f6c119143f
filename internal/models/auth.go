package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOwner is the only role the API issues tokens for.
const RoleOwner = "owner"

// LoginRequest carries the shared owner access code.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Authenticated bool      `json:"authenticated"`
	Message       string    `json:"message"`
	Token         string    `json:"token"`
	Role          string    `json:"role"`
	ExpiresIn     int64     `json:"expires_in"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// OwnerClaims is the JWT payload for owner tokens. There is no per-user identity.
type OwnerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
