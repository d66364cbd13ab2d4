package sessioninfra

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/Abraxas-365/fateweaver/pkg/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var lockErrors = errx.NewRegistry("SESSION_REDIS")

var ErrLockBackend = lockErrors.Register("LOCK_BACKEND", errx.TypeExternal, 500, "Redis session lock failed")

const (
	defaultLockTTL       = 2 * time.Minute
	defaultRetryInterval = 100 * time.Millisecond
)

// releaseScript deletes the lease only while this caller still owns it.
// Uses a Lua script for atomicity.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker serializes turns across processes with a Redis lease. The
// lease carries a TTL so a crashed holder frees the table on its own.
type RedisLocker struct {
	rdb           *redis.Client
	key           string
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLocker creates a locker for one campaign's table.
func NewRedisLocker(rdb *redis.Client, campaignID string) *RedisLocker {
	return &RedisLocker{
		rdb:           rdb,
		key:           lockKey(campaignID),
		ttl:           defaultLockTTL,
		retryInterval: defaultRetryInterval,
	}
}

func lockKey(campaignID string) string { return fmt.Sprintf("session:lock:%s", campaignID) }

// Acquire polls SET NX until the lease is granted or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context) (func(), error) {
	token := uuid.New().String()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, lockErrors.NewWithCause(ErrLockBackend, err).WithDetail("key", l.key)
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, session.ErrLockTimeout(ctx.Err())
		case <-ticker.C:
		}
	}
}

// release gives the lease back. It runs on its own context: the request
// context is often already cancelled when the deferred release fires.
func (l *RedisLocker) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	if err != nil && err != redis.Nil {
		logx.WithError(err).Warn("session lock release failed, lease will expire on its own")
	}
}
