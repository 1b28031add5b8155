// Package redisstore keeps short-lived password reset tokens in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
)

const defaultPrefix = "healthmart:reset"

// consumeScript deletes the token and drops the user pointer only while it
// still names this token, so a newer token saved meanwhile stays reachable.
var consumeScript = redis.NewScript(`
local owner = redis.call("GET", KEYS[1])
if not owner then
	return false
end
redis.call("DEL", KEYS[1])
local userKey = ARGV[1] .. owner
if redis.call("GET", userKey) == ARGV[2] then
	redis.call("DEL", userKey)
end
return owner
`)

// ResetTokenStore stores token digests with a TTL so Redis expires them.
type ResetTokenStore struct {
	client *redis.Client
	prefix string
}

// Connect parses url and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// NewResetTokenStore wraps an open client.
func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client, prefix: defaultPrefix}
}

func (s *ResetTokenStore) tokenKey(hash string) string {
	return s.prefix + ":token:" + hash
}

func (s *ResetTokenStore) userPrefix() string {
	return s.prefix + ":user:"
}

func (s *ResetTokenStore) userKey(userID int64) string {
	return s.userPrefix() + strconv.FormatInt(userID, 10)
}

// Save stores the digest and drops the user's previous token.
func (s *ResetTokenStore) Save(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) error {
	prev, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("lookup previous token: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != "" {
			pipe.Del(ctx, s.tokenKey(prev))
		}
		pipe.Set(ctx, s.tokenKey(tokenHash), userID, ttl)
		pipe.Set(ctx, s.userKey(userID), tokenHash, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Lookup reads the digest owner without removing it.
func (s *ResetTokenStore) Lookup(ctx context.Context, tokenHash string) (int64, error) {
	raw, err := s.client.Get(ctx, s.tokenKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domainErrors.ErrInvalidResetToken
		}
		return 0, fmt.Errorf("lookup reset token: %w", err)
	}
	return parseOwner(raw)
}

// Consume atomically reads and deletes the digest.
func (s *ResetTokenStore) Consume(ctx context.Context, tokenHash string) (int64, error) {
	raw, err := consumeScript.Run(ctx, s.client, []string{s.tokenKey(tokenHash)}, s.userPrefix(), tokenHash).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domainErrors.ErrInvalidResetToken
		}
		return 0, fmt.Errorf("consume reset token: %w", err)
	}
	return parseOwner(raw)
}

func parseOwner(raw string) (int64, error) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt reset token entry: %w", err)
	}
	return userID, nil
}
