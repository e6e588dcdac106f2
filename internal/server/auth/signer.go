// Package auth mints and verifies the signed tokens handed out by gophauth:
// Signer is the HS256 primitive, Codec builds and reads access/refresh claims.
package auth

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest accepted HMAC-SHA256 secret, in bytes.
const MinKeyLength = 32

// Signer signs and verifies compact HS256 JWS strings with one symmetric key.
// It is immutable after construction and safe for concurrent use.
type Signer struct {
	key    []byte
	parser *jwt.Parser
}

// NewSigner copies secret and returns a Signer. Secrets shorter than
// MinKeyLength are rejected with common.ErrWeakSigningKey.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) < MinKeyLength {
		return nil, common.ErrWeakSigningKey
	}
	return &Signer{
		key: bytes.Clone(secret),
		// exp/iat are judged by Codec so that an authentic but expired token
		// is reported as expired instead of invalid.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Sign serializes claims into header.payload.signature form.
func (s *Signer) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the algorithm, structure and signature of token and returns
// its claims. Every failure is reported as common.ErrInvalidToken.
func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
