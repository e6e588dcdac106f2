package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/redis/go-redis/v9"
)

// RedisRepositoryManager serves the Redis refresh token repository.
type RedisRepositoryManager struct {
	rdb           redis.UniversalClient
	refreshTokens *refreshtokens.RedisRepository
}

// NewRedisRepositoryManager connects lazily to the server described by opts.
func NewRedisRepositoryManager(opts *redis.Options, repoOpts ...refreshtokens.RedisOption) *RedisRepositoryManager {
	return NewRedisRepositoryManagerFromClient(redis.NewClient(opts), repoOpts...)
}

// NewRedisRepositoryManagerFromClient wraps an existing client.
func NewRedisRepositoryManagerFromClient(rdb redis.UniversalClient, repoOpts ...refreshtokens.RedisOption) *RedisRepositoryManager {
	return &RedisRepositoryManager{rdb: rdb, refreshTokens: refreshtokens.NewRedisRepository(rdb, repoOpts...)}
}

// RefreshTokens returns the Redis refresh token repository.
func (m *RedisRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

// RunMigrations only checks connectivity; the Redis layout needs no schema.
func (m *RedisRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the client.
func (m *RedisRepositoryManager) Close() error {
	return m.rdb.Close()
}
