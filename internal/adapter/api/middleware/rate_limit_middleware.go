package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"masterhub/internal/infrastructure/ratelimit"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
)

const requestAction = "http_request"

type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
}

// NewRateLimitMiddleware allows perMinute requests per client IP with a
// burst of the same size.
func NewRateLimitMiddleware(perMinute int) *RateLimitMiddleware {
	if perMinute <= 0 {
		perMinute = 60
	}
	policy := ratelimit.Policy{Burst: perMinute, Every: time.Minute / time.Duration(perMinute)}
	return &RateLimitMiddleware{
		limiter: ratelimit.NewRateLimiterWithPolicies(map[string]ratelimit.Policy{
			requestAction: policy,
		}, policy),
	}
}

func (m *RateLimitMiddleware) Limiter() *ratelimit.RateLimiter {
	return m.limiter
}

func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		allowed, retryAfter := m.limiter.Allow(ip, requestAction)
		if !allowed {
			logger.Warn("RATE LIMIT: blocked request from %s (retry in %v)", ip, retryAfter)
			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			return errors.TooManyRequests("Rate limit exceeded")
		}
		return next(c)
	}
}
