// Package gin adapts the rate limiting engine to the Gin framework.
package gin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/secondsky/ratelimit"
)

// RateLimiter creates a Gin middleware enforcing the given limiter. Denied
// requests are aborted with 429, a Retry-After header and a JSON body;
// allowed requests continue with quota headers attached. Store failures are
// logged and resolved by the limiter's FailurePolicy, never by a 5xx.
//
// Example:
//
//	router := gin.Default()
//	router.Use(ginmw.RateLimiter(limiter, ratelimit.WithKeyFunc(ratelimit.ByIP)))
func RateLimiter(limiter ratelimit.Limiter, opts ...ratelimit.Option) gin.HandlerFunc {
	cfg := ratelimit.NewConfig(opts...)

	return func(c *gin.Context) {
		if cfg.Skip != nil && cfg.Skip(c.Request) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c.Request)
		requestID := uuid.NewString()

		decision, err := limiter.Evaluate(c.Request.Context(), key)
		if err != nil {
			cfg.Logger.Errorf("rate limiting degraded for key %q (request %s): %v", key, requestID, err)
		}

		c.Header(ratelimit.HeaderLimit, strconv.FormatInt(decision.Limit, 10))
		c.Header(ratelimit.HeaderRemaining, strconv.FormatInt(decision.Remaining, 10))
		if !decision.ResetAt.IsZero() {
			c.Header(ratelimit.HeaderReset, strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}

		if !decision.Allowed {
			cfg.Logger.Debugf("denied key %q (request %s): remaining=%d tier=%q", key, requestID, decision.Remaining, decision.Tier)

			retryAfter := decision.RetryAfterSeconds()
			if retryAfter <= 0 {
				retryAfter = 1
			}
			message := "you have sent too many requests to this service, slow down please"
			if decision.Tier != "" {
				message = "you have exceeded the " + decision.Tier + " rate limit, slow down please"
			}
			c.Header(ratelimit.HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Too Many Requests",
				"message":    message,
				"retryAfter": retryAfter,
			})
			return
		}

		cfg.Logger.Debugf("allowed key %q (request %s): remaining=%d", key, requestID, decision.Remaining)
		c.Next()
	}
}
