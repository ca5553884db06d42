package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RunLock implements ports.RunLock using Redis SET NX. The lock value is a
// random token so one process cannot release a lock another process holds
// after its own expired.
type RunLock struct {
	client *goredis.Client
	key    string
	token  string
}

// NewRunLock creates a new Redis-backed payroll run lock.
func NewRunLock(client *goredis.Client) *RunLock {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return &RunLock{
		client: client,
		key:    "payroll:run_lock",
		token:  hex.EncodeToString(buf),
	}
}

// Acquire takes the lock for at most ttl. Returns false when another run
// holds it.
func (l *RunLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis run lock acquire: %w", err)
	}
	return ok, nil
}

// releaseScript deletes the lock only if this instance still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Release frees the lock if this instance holds it. Releasing a lock that
// already expired or belongs to someone else is a no-op.
func (l *RunLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("redis run lock release: %w", err)
	}
	return nil
}
