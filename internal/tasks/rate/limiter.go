package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Window  time.Duration // e.g., 1 minute, 1 hour
	MaxJobs int           // max requests per window
}

type QueueConfig struct {
	Name      string
	RateLimit RateLimit
}

// QueueRateLimiter is a sliding-window limiter over a Redis sorted set keyed
// by queue name and caller identifier.
type QueueRateLimiter struct {
	redis  redis.Cmdable
	config QueueConfig
	now    func() time.Time
}

func NewQueueRateLimiter(redis redis.Cmdable, config QueueConfig) *QueueRateLimiter {
	return &QueueRateLimiter{
		redis:  redis,
		config: config,
		now:    time.Now,
	}
}

// Allow records one attempt for identifier and reports whether it fits in the
// current window. Rejected attempts still count.
func (qrl *QueueRateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	if qrl.config.RateLimit.MaxJobs <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("queue_rate_limit:%s:%s", qrl.config.Name, identifier)

	pipe := qrl.redis.TxPipeline()
	now := qrl.now().UnixMilli()
	windowStart := now - qrl.config.RateLimit.Window.Milliseconds()

	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: uuid.NewString()})
	pipe.PExpire(ctx, key, qrl.config.RateLimit.Window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	return card.Val() < int64(qrl.config.RateLimit.MaxJobs), nil
}
