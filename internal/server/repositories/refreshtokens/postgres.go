package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// DB is what PostgresRepository needs from the pool: plain queries plus
// transactions. *sql.DB satisfies it.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

// PostgresRepository keeps refresh tokens in the refresh_tokens table.
// Writers for one user are serialized with a transaction-scoped advisory lock
// and the UNIQUE(user_id) constraint backs the one-row-per-user rule.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository constructs a repository bound to db.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const insertTokenQuery = `
	INSERT INTO refresh_tokens (user_id, token, expires_at)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
`

// Replace deletes the user's current row, if any, and inserts a new one.
func (r *PostgresRepository) Replace(ctx context.Context, userID, identifier string, expiresAt time.Time) (*models.RefreshToken, error) {
	token := &models.RefreshToken{TokenIdentifier: identifier, UserID: userID, ExpiresAt: expiresAt}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := dbx.AdvisoryXactLock(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return insertToken(ctx, tx, token)
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// Rotate swaps oldIdentifier for newIdentifier if oldIdentifier is still the
// user's live row.
func (r *PostgresRepository) Rotate(ctx context.Context, userID, oldIdentifier, newIdentifier string, expiresAt time.Time) (*models.RefreshToken, error) {
	token := &models.RefreshToken{TokenIdentifier: newIdentifier, UserID: userID, ExpiresAt: expiresAt}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := dbx.AdvisoryXactLock(ctx, tx, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1 AND token = $2`, userID, oldIdentifier)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return common.ErrorNotFound
		}
		return insertToken(ctx, tx, token)
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func insertToken(ctx context.Context, tx dbx.DBTX, token *models.RefreshToken) error {
	err := tx.QueryRowContext(ctx, insertTokenQuery, token.UserID, token.TokenIdentifier, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// FindByIdentifier returns the row whose token column equals identifier.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.RefreshToken, error) {
	query := `
		SELECT id, token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	t := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, identifier).
		Scan(&t.ID, &t.TokenIdentifier, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// DeleteExpired removes identifier only when its expiry is before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, identifier string, now time.Time) (bool, error) {
	n, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1 AND expires_at < $2`, identifier, now)
	return n > 0, err
}

// DeleteByIdentifier removes identifier.
func (r *PostgresRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	_, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, identifier)
	return err
}

// DeleteByUser removes the user's row.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) (bool, error) {
	n, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return n > 0, err
}

// DeleteAllExpired removes every row with expires_at before now.
func (r *PostgresRepository) DeleteAllExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
