// Package common defines shared constants and sentinel errors used across
// the gophauth server layers. Callers should use errors.Is to match these
// values; lower layers wrap them with fmt.Errorf("...: %w", err).
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Registration errors.
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrIdentityCreationFailed = errors.New("failed to create user")

	// Login errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Token errors.
	ErrInvalidToken      = errors.New("invalid token")
	ErrWrongTokenType    = errors.New("invalid refresh token type")
	ErrTokenNotFound     = errors.New("refresh token not found or already invalid")
	ErrTokenUserMismatch = errors.New("token user mismatch")
	ErrTokenExpired      = errors.New("refresh token was expired, please make a new signin request")

	// Configuration errors.
	ErrWeakSigningKey = errors.New("signing key must be at least 32 bytes")
)
