package support

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/betcleverde/betclever-landing-hub/internal/apperr"
)

const sendRatePrefix = "support_send_rate:"

// SendLimiter caps how many messages a user may send per hour. Counter lives
// in Redis with a rolling one-hour expiry.
type SendLimiter struct {
	rdb     *redis.Client
	perHour int
}

func NewSendLimiter(rdb *redis.Client, perHour int) *SendLimiter {
	return &SendLimiter{rdb: rdb, perHour: perHour}
}

func (l *SendLimiter) Allow(ctx context.Context, userID string) error {
	key := sendRatePrefix + userID
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if count == 1 {
		if _, err := l.rdb.Expire(ctx, key, time.Hour).Result(); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
		}
	} else if count > int64(l.perHour) {
		l.rdb.Decr(ctx, key)
		return apperr.ErrRateLimited
	}
	return nil
}
