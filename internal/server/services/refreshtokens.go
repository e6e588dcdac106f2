package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/google/uuid"
)

// RefreshTokenService owns the persisted half of refresh credentials and
// enforces the one-session-per-user rule on top of a Repository.
type RefreshTokenService struct {
	repo  refreshtokens.Repository
	ttl   time.Duration
	now   timex.Clock
	newID func() string
}

// RefreshTokenOption customizes a RefreshTokenService.
type RefreshTokenOption func(*RefreshTokenService)

// WithTokenClock overrides the time source.
func WithTokenClock(clock timex.Clock) RefreshTokenOption {
	return func(s *RefreshTokenService) { s.now = clock }
}

// WithIdentifierGenerator overrides the uuid v4 identifier source.
func WithIdentifierGenerator(gen func() string) RefreshTokenOption {
	return func(s *RefreshTokenService) { s.newID = gen }
}

// NewRefreshTokenService returns a service storing rows valid for ttl.
func NewRefreshTokenService(repo refreshtokens.Repository, ttl time.Duration, opts ...RefreshTokenOption) *RefreshTokenService {
	s := &RefreshTokenService{
		repo:  repo,
		ttl:   ttl,
		now:   timex.SystemClock,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create replaces whatever row userID holds with a fresh one.
func (s *RefreshTokenService) Create(ctx context.Context, userID string) (*models.RefreshToken, error) {
	t, err := s.repo.Replace(ctx, userID, s.newID(), s.now().Add(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return t, nil
}

// Rotate replaces current with a fresh row for the same user, provided
// current is still the user's live row. Losing a concurrent rotation yields
// common.ErrTokenNotFound.
func (s *RefreshTokenService) Rotate(ctx context.Context, current *models.RefreshToken) (*models.RefreshToken, error) {
	t, err := s.repo.Rotate(ctx, current.UserID, current.TokenIdentifier, s.newID(), s.now().Add(s.ttl))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return t, nil
}

// FindByIdentifier returns common.ErrTokenNotFound for unknown identifiers.
func (s *RefreshTokenService) FindByIdentifier(ctx context.Context, identifier string) (*models.RefreshToken, error) {
	t, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return t, nil
}

// VerifyNotExpired passes token through if it is still valid. An expired row
// is deleted and common.ErrTokenExpired is returned.
func (s *RefreshTokenService) VerifyNotExpired(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error) {
	now := s.now()
	if !token.ExpiredAt(now) {
		return token, nil
	}
	if _, err := s.repo.DeleteExpired(ctx, token.TokenIdentifier, now); err != nil {
		return nil, fmt.Errorf("%w (cleanup failed: %v)", common.ErrTokenExpired, err)
	}
	return nil, common.ErrTokenExpired
}

// Revoke deletes token regardless of its expiry.
func (s *RefreshTokenService) Revoke(ctx context.Context, token *models.RefreshToken) error {
	if err := s.repo.DeleteByIdentifier(ctx, token.TokenIdentifier); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// DeleteForUser removes the user's row and reports whether there was one.
func (s *RefreshTokenService) DeleteForUser(ctx context.Context, userID string) (bool, error) {
	existed, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	return existed, nil
}

// SweepExpired removes every row that expired before now.
func (s *RefreshTokenService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.DeleteAllExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("sweep refresh tokens: %w", err)
	}
	return n, nil
}

// Now exposes the service clock so callers sweep with the same notion of time.
func (s *RefreshTokenService) Now() time.Time {
	return s.now()
}
