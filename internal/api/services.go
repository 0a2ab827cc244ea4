package api

import (
	"github.com/connectapp/connect-server/internal/metrics"
	"github.com/connectapp/connect-server/internal/ratelimit"
	"github.com/connectapp/connect-server/internal/service"
	"github.com/connectapp/connect-server/internal/taxonomy"
)

// Services groups the business logic used by the API server.
type Services struct {
	Suggestion *service.SuggestionService
	User       *service.UserService
	Taxonomy   taxonomy.Provider
}

// Options carries server settings that come from configuration.
type Options struct {
	// DefaultLimit applies when ?limit is absent.
	DefaultLimit int
	// DefaultLimitPerDomain applies when ?limit_per_domain is absent.
	DefaultLimitPerDomain int
	// CORSOrigins lists allowed origins; empty disables CORS handling.
	CORSOrigins []string
	// RateLimiter guards the suggestion endpoints per client IP. Nil disables it.
	RateLimiter *ratelimit.KeyedRateLimiter
	// Metrics is optional; without it /metrics is not served.
	Metrics *metrics.Metrics
}

func (o *Options) setDefaults() {
	if o.DefaultLimit == 0 {
		o.DefaultLimit = service.DefaultLimit
	}
	if o.DefaultLimitPerDomain == 0 {
		o.DefaultLimitPerDomain = service.DefaultLimitPerDomain
	}
}
