package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the value of the "type" claim.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeUnknown TokenType = "unknown"
)

// Claims is the flat claim set shared by access and refresh tokens.
// Roles is only set on access tokens, TokenIdentifier only on refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Type            string   `json:"type,omitempty"`
	Roles           []string `json:"roles,omitempty"`
	TokenIdentifier string   `json:"tokenIdentifier,omitempty"`
}

// Kind maps the raw "type" claim onto a TokenType. Anything unexpected,
// including an absent claim, is TokenTypeUnknown.
func (c *Claims) Kind() TokenType {
	switch TokenType(c.Type) {
	case TokenTypeAccess:
		return TokenTypeAccess
	case TokenTypeRefresh:
		return TokenTypeRefresh
	default:
		return TokenTypeUnknown
	}
}

// Identifier returns the refresh token identifier and whether it is present.
func (c *Claims) Identifier() (string, bool) {
	return c.TokenIdentifier, c.TokenIdentifier != ""
}

// Expiry returns the "exp" claim and whether it is present.
func (c *Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// ExpiredAt reports whether the token is expired at now. A token without
// "exp" counts as expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	exp, ok := c.Expiry()
	if !ok {
		return true
	}
	return exp.Before(now)
}
