package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/connectapp/connect-server/internal/ratelimit"
)

// rateLimitMiddleware rejects operations with 429 once a client IP exhausts
// its bucket. Suggestion endpoints scan every user and write back, so they
// are the ones guarded.
func (s *Server) rateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter) func(huma.Context, func(huma.Context)) {
	retryAfter := strconv.Itoa(int(math.Ceil(limiter.RetryAfter().Seconds())))

	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.RemoteAddr())

		if !limiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", ctx.URL().Path,
			)
			s.opts.Metrics.RecordRateLimited()
			ctx.SetHeader("Retry-After", retryAfter)
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next(ctx)
	}
}

// clientIP strips the port from a remote address. chi's RealIP middleware
// has already replaced it with X-Forwarded-For or X-Real-IP when present.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(remoteAddr)
}
