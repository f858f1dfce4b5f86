package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AdvisoryLock guards the read-sum-then-insert sequence in the quota
// holding check. Preventing two concurrent BookingCreated events for the
// same user/week from both observing the same pre-insert sum and
// over-committing the weekly cap requires either a serializable
// transaction or an advisory lock keyed by (user_id, week_start); this
// implementation chooses the latter.
type AdvisoryLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAdvisoryLock builds an AdvisoryLock over client with a lock TTL long
// enough to cover one hold-or-deny transaction, with headroom for retries.
func NewAdvisoryLock(client *redis.Client) *AdvisoryLock {
	return &AdvisoryLock{client: client, ttl: 10 * time.Second}
}

// Acquire blocks (with backoff) until it holds the lock for key, or ctx is
// done. It returns a release function that must be called to unlock.
func (l *AdvisoryLock) Acquire(ctx context.Context, userID int64, weekStart time.Time) (release func(), err error) {
	key := lockKey(userID, weekStart)
	token := uuid.New().String()

	backoff := 10 * time.Millisecond
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("quota: failed to acquire advisory lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}

	release = func() {
		// Only delete if we still own the lock (token matches); a
		// lock we no longer own has already expired and been taken by
		// someone else.
		script := redis.NewScript(`
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			end
			return 0
		`)
		script.Run(context.Background(), l.client, []string{key}, token)
	}
	return release, nil
}

func lockKey(userID int64, weekStart time.Time) string {
	return fmt.Sprintf("quota-lock:%d:%s", userID, weekStart.Format("2006-01-02"))
}
