package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"github.com/bsm/redislock"
)

const lockTTL = 30 * time.Second

// ObtainLock takes the redis lock lockType:key and returns its release func.
// Without Redis configured it returns a no-op release; the database row lock still applies.
func ObtainLock(ctx context.Context, lockType string, key string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("%s:%s", lockType, key)
	lock, err := locker.Obtain(ctx, lockKey, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	})
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock", lockKey, err)
		return nil, errors.New("could not obtain lock for " + lockKey)
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock", lockKey, err)
		return nil, err
	}

	return func() {
		// release with a fresh context so a cancelled request still frees the key
		if err := lock.Release(context.Background()); err != nil && err != redislock.ErrLockNotHeld {
			config.LogError(logger, moduleName, functionName, "Error releasing lock", lockKey, err)
		}
	}, nil
}
