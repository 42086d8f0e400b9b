package idgen

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"
)

// Clock abstracts the time source for the ID generator.
type Clock interface {
	// Now returns the current timestamp in milliseconds.
	Now() int64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

// SystemClock uses the local system time.
type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().UnixMilli()
}

const defaultRedisClockTimeout = 200 * time.Millisecond

// RedisClock reads time from the Redis TIME command so that replicas with
// skewed local clocks still produce ordered IDs. It falls back to the local
// clock when Redis is unreachable.
type RedisClock struct {
	client   redis.UniversalClient
	timeout  time.Duration
	degraded atomic.Bool
}

func NewRedisClock(client redis.UniversalClient) *RedisClock {
	return &RedisClock{
		client:  client,
		timeout: defaultRedisClockTimeout,
	}
}

func (r *RedisClock) Now() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	res, err := r.client.Time(ctx).Result()
	if err != nil {
		if r.degraded.CompareAndSwap(false, true) {
			logger.Warnw("Redis clock unavailable, using local clock", "error", err.Error())
		}
		return time.Now().UnixMilli()
	}
	if r.degraded.CompareAndSwap(true, false) {
		logger.Infow("Redis clock recovered")
	}

	return res.UnixMilli()
}

// Ping verifies the Redis connection.
func (r *RedisClock) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
