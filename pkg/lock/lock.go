// Package lock provides short-lived advisory locks on redis keys.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when any key is already held.
var ErrNotAcquired = errors.New("lock not acquired")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker interface {
	// Acquire takes every key or none of them.
	Acquire(ctx context.Context, keys []string, ttl time.Duration) (*Lease, error)
}

type RedisLocker struct {
	client redis.Cmdable
	prefix string
}

func NewRedisLocker(client redis.Cmdable, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

// Lease is a set of held keys sharing one owner token.
type Lease struct {
	client redis.Cmdable
	token  string
	keys   []string
}

func (l *RedisLocker) Acquire(ctx context.Context, keys []string, ttl time.Duration) (*Lease, error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			sorted = append(sorted, l.prefix+k)
		}
	}
	sort.Strings(sorted)

	lease := &Lease{client: l.client, token: uuid.NewString()}
	for _, key := range sorted {
		ok, err := l.client.SetNX(ctx, key, lease.token, ttl).Result()
		if err != nil {
			lease.Release(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("failed to acquire %s: %w", key, err)
		}
		if !ok {
			lease.Release(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}
		lease.keys = append(lease.keys, key)
	}
	return lease, nil
}

// Release deletes only the keys still owned by this lease.
func (l *Lease) Release(ctx context.Context) error {
	var firstErr error
	for _, key := range l.keys {
		if err := releaseScript.Run(ctx, l.client, []string{key}, l.token).Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.keys = nil
	return firstErr
}

// Keys returns the held keys.
func (l *Lease) Keys() []string {
	return append([]string(nil), l.keys...)
}
