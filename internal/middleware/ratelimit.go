package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key is allowed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter implements per-key token bucket rate limiting in process.
type MemoryLimiter struct {
	maxTokens  float64
	refillRate float64  // tokens per second
	buckets    sync.Map // map[string]*bucket
	stop       chan struct{}
	stopOnce   sync.Once
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewMemoryLimiter allows perMinute requests per key with background cleanup
// of idle buckets. Call Stop on shutdown.
func NewMemoryLimiter(perMinute int, cleanupInterval time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		maxTokens:  float64(perMinute),
		refillRate: float64(perMinute) / 60.0,
		stop:       make(chan struct{}),
	}
	go l.cleanup(cleanupInterval)
	return l
}

// Stop terminates the background cleanup goroutine.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	val, _ := l.buckets.LoadOrStore(key, &bucket{
		tokens:     l.maxTokens,
		lastRefill: time.Now(),
	})
	b := val.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.refillRate
	if b.tokens > l.maxTokens {
		b.tokens = l.maxTokens
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

func (l *MemoryLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := time.Now()
			l.buckets.Range(func(key, value any) bool {
				b := value.(*bucket)
				b.mu.Lock()
				idle := now.Sub(b.lastRefill)
				b.mu.Unlock()
				if idle > 10*time.Minute {
					l.buckets.Delete(key)
				}
				return true
			})
		}
	}
}

// RedisLimiter is a fixed one-minute window counter shared by all instances.
type RedisLimiter struct {
	client    *redis.Client
	perMinute int64
	prefix    string
}

func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{client: client, perMinute: int64(perMinute), prefix: "ratelimit:redeem:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / 60
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	return incr.Val() <= l.perMinute, nil
}

// RateLimit rejects requests over the limiter's budget per client IP.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, perMinute int, logger *slog.Logger) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(60.0/float64(perMinute)) + 1)

	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
