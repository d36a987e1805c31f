package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// acquireLock takes a best-effort distributed lock so a job runs on at
// most one worker at a time. The returned release function is a no-op
// when no redis client is configured.
func acquireLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, func(), error) {
	if rdb == nil {
		return true, func() {}, nil
	}
	ok, err := rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, nil, nil
	}
	release := func() {
		_ = rdb.Del(context.WithoutCancel(ctx), key).Err()
	}
	return true, release, nil
}
