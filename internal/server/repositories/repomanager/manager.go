// Package repomanager owns the storage connection for the refresh token store
// and vends the matching repository implementation.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
)

// RepositoryManager is one storage backend: its schema setup, its
// repositories and its connection lifetime.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	RefreshTokens() refreshtokens.Repository
	Close() error
}
