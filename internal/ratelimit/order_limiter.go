package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/menuboard/internal/config"
)

const keyOrderSession = "menuboard:ratelimit:orders:%s"

// OrderLimiter throttles the unauthenticated ordering endpoints. Buckets
// are keyed per ordering session so one chatty kiosk cannot starve the
// rest. Absent redis the limiter is a no-op.
type OrderLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
	rate   float64
	burst  int
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Redis  *redis.Client `optional:"true"`
}

func New(p Params) *OrderLimiter {
	if p.Config.RateLimitDisabled || p.Redis == nil {
		return nil
	}
	rate := p.Config.OrderRatePerSec
	burst := p.Config.OrderRateBurst
	if rate <= 0 || burst <= 0 {
		return nil
	}
	return &OrderLimiter{
		log:    p.Log.Named("ratelimit"),
		bucket: NewTokenBucket(p.Redis),
		rate:   rate,
		burst:  burst,
	}
}

// Middleware enforces the per-session bucket. Limiter errors fail open;
// losing redis should not take ordering down with it.
func (l *OrderLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.bucket == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf(keyOrderSession, l.clientKey(c))
		result, err := l.bucket.Allow(c.Request.Context(), key, l.rate, l.burst)
		if err != nil {
			l.log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"type":    "rate_limited",
					"message": "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}

func (l *OrderLimiter) clientKey(c *gin.Context) string {
	if session := strings.TrimSpace(c.Query("session_id")); session != "" {
		return session
	}
	return c.ClientIP()
}

var Module = fx.Module("rate.limit",
	fx.Provide(New),
)
