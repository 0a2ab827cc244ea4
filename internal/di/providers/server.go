package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/connectapp/connect-server/internal/api"
	"github.com/connectapp/connect-server/internal/config"
	"github.com/connectapp/connect-server/internal/logger"
	"github.com/connectapp/connect-server/internal/metrics"
	"github.com/connectapp/connect-server/internal/ratelimit"
	"github.com/connectapp/connect-server/internal/service"
)

// shutdownTimeout bounds how long in-flight requests may drain.
const shutdownTimeout = 30 * time.Second

// RateLimiterHandle wraps the suggestion rate limiter. Limiter is nil when
// rate limiting is disabled.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-IP limiter for suggestion endpoints.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.RateLimit.Enabled {
		log.Info("Rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	return &RateLimiterHandle{
		Limiter: ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with every route registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tax := do.MustInvoke[*TaxonomyHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Suggestion: do.MustInvoke[*service.SuggestionService](i),
		User:       do.MustInvoke[*service.UserService](i),
		Taxonomy:   tax.Provider,
	}

	opts := api.Options{
		DefaultLimit:          cfg.Suggestions.DefaultLimit,
		DefaultLimitPerDomain: cfg.Suggestions.DefaultLimitPerDomain,
		CORSOrigins:           cfg.CORS.AllowedOrigins,
		RateLimiter:           limiter.Limiter,
		Metrics:               m,
	}

	return api.NewServer(storeHandle.Store, services, opts, log.Component("http")), nil
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*api.Server](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
