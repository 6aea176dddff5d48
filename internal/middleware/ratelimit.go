package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
	"github.com/noah-isme/fitcoach-api/pkg/response"
)

// RateLimitOptions configures a per-client-IP limiter.
type RateLimitOptions struct {
	// Rate uses the limiter format, e.g. "10-M" for ten per minute.
	Rate   string
	Prefix string
	// Redis shares counters across instances; nil keeps them in process.
	Redis  *redis.Client
	Logger *zap.Logger
}

// RateLimit throttles requests by client IP. An empty rate disables it.
func RateLimit(opts RateLimitOptions) (gin.HandlerFunc, error) {
	if opts.Rate == "" {
		return func(c *gin.Context) { c.Next() }, nil
	}
	rate, err := limiter.NewRateFromFormatted(opts.Rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", opts.Rate, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	storeOpts := limiter.StoreOptions{Prefix: opts.Prefix}
	if storeOpts.Prefix == "" {
		storeOpts.Prefix = "ratelimit"
	}

	var store limiter.Store
	if opts.Redis != nil {
		store, err = sredis.NewStoreWithOptions(opts.Redis, storeOpts)
		if err != nil {
			return nil, fmt.Errorf("rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(storeOpts)
	}

	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Info("rate limit reached", zap.String("path", c.FullPath()), zap.String("ip", c.ClientIP()))
			response.Error(c, appErrors.ErrRateLimited)
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.Warn("rate limiter failed", zap.Error(err))
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "rate limiter unavailable"))
		}),
	), nil
}
