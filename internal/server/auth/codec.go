package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Codec builds and reads access and refresh tokens on top of a Signer.
type Codec struct {
	signer     *Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        timex.Clock
}

// CodecOption customizes a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(clock timex.Clock) CodecOption {
	return func(c *Codec) { c.now = clock }
}

// NewCodec returns a Codec. Non-positive lifetimes fall back to the defaults.
func NewCodec(signer *Signer, accessTTL, refreshTTL time.Duration, opts ...CodecOption) *Codec {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	c := &Codec{
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        timex.SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IssueAccessToken mints a short-lived access token for subject.
func (c *Codec) IssueAccessToken(subject string, roles []string) (string, error) {
	claims := c.newClaims(subject, TokenTypeAccess, c.accessTTL)
	claims.Roles = append([]string(nil), roles...)
	return c.signer.Sign(claims)
}

// IssueRefreshToken mints a long-lived refresh token wrapping tokenIdentifier.
func (c *Codec) IssueRefreshToken(subject, tokenIdentifier string) (string, error) {
	claims := c.newClaims(subject, TokenTypeRefresh, c.refreshTTL)
	claims.TokenIdentifier = tokenIdentifier
	return c.signer.Sign(claims)
}

func (c *Codec) newClaims(subject string, typ TokenType, ttl time.Duration) *Claims {
	now := c.now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Type: string(typ),
	}
}

// Parse verifies token and returns its claims without judging expiry.
func (c *Codec) Parse(token string) (*Claims, error) {
	return c.signer.Verify(token)
}

// ExtractSubject returns the "sub" claim.
func (c *Codec) ExtractSubject(token string) (string, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractTokenIdentifier returns the refresh identifier. A verified token
// without one yields ok=false and a nil error.
func (c *Codec) ExtractTokenIdentifier(token string) (string, bool, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return "", false, err
	}
	id, ok := claims.Identifier()
	return id, ok, nil
}

// ExtractExpiry returns the "exp" claim.
func (c *Codec) ExtractExpiry(token string) (time.Time, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return time.Time{}, err
	}
	exp, ok := claims.Expiry()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", common.ErrInvalidToken)
	}
	return exp, nil
}

// Classify reports the token type. It never fails: anything that cannot be
// verified or carries an unexpected type is TokenTypeUnknown.
func (c *Codec) Classify(token string) TokenType {
	claims, err := c.Parse(token)
	if err != nil {
		return TokenTypeUnknown
	}
	return claims.Kind()
}

// IsExpired compares the token expiry with the current time. Tokens that
// cannot be verified count as expired.
func (c *Codec) IsExpired(token string) bool {
	claims, err := c.Parse(token)
	if err != nil {
		return true
	}
	return c.Expired(claims)
}

// Expired applies the codec clock to already parsed claims.
func (c *Codec) Expired(claims *Claims) bool {
	return claims.ExpiredAt(c.now())
}

// ValidateAccessToken accepts only verified, unexpired access tokens.
func (c *Codec) ValidateAccessToken(token string) (*Claims, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind() != TokenTypeAccess {
		return nil, common.ErrWrongTokenType
	}
	if c.Expired(claims) {
		return nil, common.ErrTokenExpired
	}
	return claims, nil
}

// RefreshTTL is the lifetime given to refresh tokens.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}
