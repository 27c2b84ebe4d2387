package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const loginRateLimitPeriod = time.Minute

// LoginRateLimiter caps login attempts per client IP per minute. A nil
// client disables the limiter; Redis errors let the request through.
func LoginRateLimiter(client *redis.Client, limit int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "rate_limit:login:" + c.ClientIP()
		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warn("login rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		// First hit opens the window
		if count == 1 {
			client.Expire(c.Request.Context(), key, loginRateLimitPeriod)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts", "code": "rate_limited"})
			return
		}

		c.Next()
	}
}
