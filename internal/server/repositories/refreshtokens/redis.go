package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisRepository.
const DefaultRedisPrefix = "gophauth:rt"

// Key layout:
//
//	<prefix>:id:<identifier>  hash {id, user_id, expires_at, created_at} (unix ms)
//	<prefix>:user:<user_id>   string holding the user's current identifier
//	<prefix>:expiry           sorted set identifier -> expires_at
//	<prefix>:seq              row id counter
//
// Keys get PEXPIREAT at expires_at+retention so that abandoned rows vanish
// even if no sweep runs. The sorted set drives DeleteAllExpired.

// store replaces the user's row. With ARGV[7] set it only does so when the
// current identifier equals ARGV[7] and returns 0 otherwise.
const storeScript = `
local current = redis.call("GET", KEYS[1])
if ARGV[7] ~= "" and current ~= ARGV[7] then
  return 0
end
if current then
  redis.call("DEL", ARGV[1] .. current)
  redis.call("ZREM", KEYS[2], current)
end
local id = redis.call("INCR", KEYS[3])
redis.call("HSET", KEYS[4], "id", id, "user_id", ARGV[2], "expires_at", ARGV[4], "created_at", ARGV[5])
redis.call("PEXPIREAT", KEYS[4], ARGV[6])
redis.call("SET", KEYS[1], ARGV[3])
redis.call("PEXPIREAT", KEYS[1], ARGV[6])
redis.call("ZADD", KEYS[2], ARGV[4], ARGV[3])
return id
`

// deleteIdentifier removes one row. With ARGV[1] set the row is only removed
// when expires_at < ARGV[1].
const deleteIdentifierScript = `
local fields = redis.call("HMGET", KEYS[1], "user_id", "expires_at")
local user, exp = fields[1], fields[2]
if not user then
  redis.call("ZREM", KEYS[2], ARGV[2])
  return 0
end
if ARGV[1] ~= "" and tonumber(exp) >= tonumber(ARGV[1]) then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("ZREM", KEYS[2], ARGV[2])
local userKey = ARGV[3] .. user
if redis.call("GET", userKey) == ARGV[2] then
  redis.call("DEL", userKey)
end
return 1
`

const deleteUserScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("ZREM", KEYS[2], current)
redis.call("DEL", ARGV[1] .. current)
return 1
`

// sweep removes every row with expires_at < ARGV[1]. Rows are counted by
// their sorted set entry; the hash may already be gone via PEXPIREAT.
const sweepScript = `
local ids = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[1])
local removed = 0
for _, ident in ipairs(ids) do
  local key = ARGV[2] .. ident
  local user = redis.call("HGET", key, "user_id")
  redis.call("DEL", key)
  if user then
    local userKey = ARGV[3] .. user
    if redis.call("GET", userKey) == ident then
      redis.call("DEL", userKey)
    end
  end
  removed = removed + redis.call("ZREM", KEYS[1], ident)
end
return removed
`

var (
	storeLua            = redis.NewScript(storeScript)
	deleteIdentifierLua = redis.NewScript(deleteIdentifierScript)
	deleteUserLua       = redis.NewScript(deleteUserScript)
	sweepLua            = redis.NewScript(sweepScript)
)

// RedisRepository keeps refresh tokens in Redis. Multi-key mutations run as
// Lua scripts so each call is atomic. Keys are built inside scripts, so the
// layout assumes a single Redis node rather than a cluster.
type RedisRepository struct {
	rdb       redis.UniversalClient
	prefix    string
	retention time.Duration
}

// RedisOption customizes a RedisRepository.
type RedisOption func(*RedisRepository)

// WithPrefix overrides DefaultRedisPrefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisRepository) { r.prefix = prefix }
}

// WithRetention sets how long an expired row survives before Redis evicts it
// on its own. Within this window the row is still reported as expired.
func WithRetention(d time.Duration) RedisOption {
	return func(r *RedisRepository) { r.retention = d }
}

// NewRedisRepository constructs a repository on top of rdb.
func NewRedisRepository(rdb redis.UniversalClient, opts ...RedisOption) *RedisRepository {
	r := &RedisRepository{rdb: rdb, prefix: DefaultRedisPrefix, retention: 24 * time.Hour}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRepository) idPrefix() string   { return r.prefix + ":id:" }
func (r *RedisRepository) userPrefix() string { return r.prefix + ":user:" }
func (r *RedisRepository) expiryKey() string  { return r.prefix + ":expiry" }
func (r *RedisRepository) seqKey() string     { return r.prefix + ":seq" }

// Replace stores a new row for userID, dropping the previous one.
func (r *RedisRepository) Replace(ctx context.Context, userID, identifier string, expiresAt time.Time) (*models.RefreshToken, error) {
	return r.store(ctx, userID, "", identifier, expiresAt)
}

// Rotate swaps oldIdentifier for newIdentifier if oldIdentifier is still current.
func (r *RedisRepository) Rotate(ctx context.Context, userID, oldIdentifier, newIdentifier string, expiresAt time.Time) (*models.RefreshToken, error) {
	if oldIdentifier == "" {
		return nil, common.ErrorNotFound
	}
	return r.store(ctx, userID, oldIdentifier, newIdentifier, expiresAt)
}

func (r *RedisRepository) store(ctx context.Context, userID, expected, identifier string, expiresAt time.Time) (*models.RefreshToken, error) {
	createdAt := time.Now().UTC().Truncate(time.Millisecond)
	keys := []string{r.userPrefix() + userID, r.expiryKey(), r.seqKey(), r.idPrefix() + identifier}
	args := []any{
		r.idPrefix(),
		userID,
		identifier,
		expiresAt.UnixMilli(),
		createdAt.UnixMilli(),
		expiresAt.Add(r.retention).UnixMilli(),
		expected,
	}

	id, err := storeLua.Run(ctx, r.rdb, keys, args...).Int64()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if id == 0 {
		return nil, common.ErrorNotFound
	}

	return &models.RefreshToken{
		ID:              id,
		TokenIdentifier: identifier,
		UserID:          userID,
		ExpiresAt:       time.UnixMilli(expiresAt.UnixMilli()).UTC(),
		CreatedAt:       createdAt,
	}, nil
}

// FindByIdentifier reads the row hash for identifier.
func (r *RedisRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.RefreshToken, error) {
	fields, err := r.rdb.HGetAll(ctx, r.idPrefix()+identifier).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}
	return decodeToken(identifier, fields)
}

func decodeToken(identifier string, fields map[string]string) (*models.RefreshToken, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token %q: id: %w", identifier, err)
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token %q: expires_at: %w", identifier, err)
	}
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token %q: created_at: %w", identifier, err)
	}
	userID := fields["user_id"]
	if userID == "" {
		return nil, errors.New("corrupt refresh token: empty user_id")
	}
	return &models.RefreshToken{
		ID:              id,
		TokenIdentifier: identifier,
		UserID:          userID,
		ExpiresAt:       time.UnixMilli(expires).UTC(),
		CreatedAt:       time.UnixMilli(created).UTC(),
	}, nil
}

// DeleteExpired removes identifier only when it expired before now.
func (r *RedisRepository) DeleteExpired(ctx context.Context, identifier string, now time.Time) (bool, error) {
	n, err := r.deleteIdentifier(ctx, identifier, strconv.FormatInt(now.UnixMilli(), 10))
	return n > 0, err
}

// DeleteByIdentifier removes identifier.
func (r *RedisRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	_, err := r.deleteIdentifier(ctx, identifier, "")
	return err
}

func (r *RedisRepository) deleteIdentifier(ctx context.Context, identifier, before string) (int64, error) {
	keys := []string{r.idPrefix() + identifier, r.expiryKey()}
	n, err := deleteIdentifierLua.Run(ctx, r.rdb, keys, before, identifier, r.userPrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}

// DeleteByUser removes the user's current row.
func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) (bool, error) {
	keys := []string{r.userPrefix() + userID, r.expiryKey()}
	n, err := deleteUserLua.Run(ctx, r.rdb, keys, r.idPrefix()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}

// DeleteAllExpired removes every row whose expiry is before now.
func (r *RedisRepository) DeleteAllExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := sweepLua.Run(ctx, r.rdb, []string{r.expiryKey()}, now.UnixMilli(), r.idPrefix(), r.userPrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}
