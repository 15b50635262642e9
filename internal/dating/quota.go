// internal/dating/quota.go
// Daily like quota on Redis. Keys embed the calendar date so the counter
// resets implicitly at midnight with no sweep job.

package dating

import (
    "context"
    "fmt"
    "time"

    "github.com/go-redis/redis/v8"
)

const quotaKeyTTL = 48 * time.Hour

// LikeQuota tracks per-user daily like consumption
type LikeQuota interface {
    // Consume atomically increments today's counter and reports whether the
    // caller was within the limit. On refusal the increment is rolled back.
    Consume(ctx context.Context, userID int64, limit int) (allowed bool, used int64, err error)
    // Refund returns one unit, used when a like turns out to be an
    // idempotent duplicate.
    Refund(ctx context.Context, userID int64) error
    // Used returns today's consumed count.
    Used(ctx context.Context, userID int64) (int64, error)
}

type redisLikeQuota struct {
    client *redis.Client
}

func NewLikeQuota(client *redis.Client) LikeQuota {
    return &redisLikeQuota{client: client}
}

func quotaKey(userID int64, day time.Time) string {
    return fmt.Sprintf("likes:quota:%d:%s", userID, day.Format("2006-01-02"))
}

func (q *redisLikeQuota) Consume(ctx context.Context, userID int64, limit int) (bool, int64, error) {
    key := quotaKey(userID, time.Now())

    used, err := q.client.Incr(ctx, key).Result()
    if err != nil {
        return false, 0, err
    }

    // First increment of the day creates the key; give it a TTL so stale
    // counters expire on their own
    if used == 1 {
        q.client.Expire(ctx, key, quotaKeyTTL)
    }

    if used > int64(limit) {
        // Over quota: roll back the speculative increment
        q.client.Decr(ctx, key)
        return false, used - 1, nil
    }

    return true, used, nil
}

func (q *redisLikeQuota) Refund(ctx context.Context, userID int64) error {
    key := quotaKey(userID, time.Now())

    used, err := q.client.Decr(ctx, key).Result()
    if err != nil {
        return err
    }
    if used < 0 {
        // Never let a refund drive the counter negative
        q.client.Set(ctx, key, 0, quotaKeyTTL)
    }
    return nil
}

func (q *redisLikeQuota) Used(ctx context.Context, userID int64) (int64, error) {
    used, err := q.client.Get(ctx, quotaKey(userID, time.Now())).Int64()
    if err == redis.Nil {
        return 0, nil
    }
    return used, err
}
