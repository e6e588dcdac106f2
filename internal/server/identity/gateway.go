// Package identity talks to the external user directory that owns identities
// and password hashes. The rest of the server only sees the Gateway interface.
package identity

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Gateway is the consumed directory contract. Lookups return
// common.ErrorNotFound when the identity does not exist.
type Gateway interface {
	FindByUsername(ctx context.Context, username string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	Create(ctx context.Context, req models.NewIdentity) (*models.Identity, error)
	// VerifyPassword reports whether password matches the stored hash of an
	// active identity. Unknown users yield false without an error.
	VerifyPassword(ctx context.Context, username, password string) (bool, error)
}
