// Package refreshtokens declares the storage contract for refresh token rows
// and its PostgreSQL and Redis implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores at most one refresh token row per user. Every method is
// atomic with respect to concurrent calls for the same user.
type Repository interface {
	// Replace removes any row held by userID and stores a new one.
	Replace(ctx context.Context, userID, identifier string, expiresAt time.Time) (*models.RefreshToken, error)

	// Rotate replaces the user's row only if its identifier is still
	// oldIdentifier. Otherwise it returns common.ErrorNotFound and changes nothing.
	Rotate(ctx context.Context, userID, oldIdentifier, newIdentifier string, expiresAt time.Time) (*models.RefreshToken, error)

	// FindByIdentifier returns common.ErrorNotFound when no row matches.
	FindByIdentifier(ctx context.Context, identifier string) (*models.RefreshToken, error)

	// DeleteExpired removes the row only if it expired before now and
	// reports whether it did.
	DeleteExpired(ctx context.Context, identifier string, now time.Time) (bool, error)

	// DeleteByIdentifier removes the row unconditionally. A missing row is not an error.
	DeleteByIdentifier(ctx context.Context, identifier string) error

	// DeleteByUser removes the user's row and reports whether one existed.
	DeleteByUser(ctx context.Context, userID string) (bool, error)

	// DeleteAllExpired removes every row that expired before now.
	DeleteAllExpired(ctx context.Context, now time.Time) (int64, error)
}
