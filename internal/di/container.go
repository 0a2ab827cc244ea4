// Package di provides dependency injection configuration for the Connect server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/connectapp/connect-server/internal/api"
	"github.com/connectapp/connect-server/internal/config"
	"github.com/connectapp/connect-server/internal/di/providers"
	"github.com/connectapp/connect-server/internal/logger"
	"github.com/connectapp/connect-server/internal/metrics"
	"github.com/connectapp/connect-server/internal/service"
	"github.com/connectapp/connect-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments passed on to config loading.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.Args(args))
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Suggestion engine
	do.Provide(injector, providers.ProvideTaxonomy)
	do.Provide(injector, providers.ProvideSuggestionService)
	do.Provide(injector, providers.ProvideUserService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// BootstrapServices initializes everything except the HTTP listener.
// Command-line tools use it to reach the services directly.
func BootstrapServices(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*metrics.Metrics](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if _, err := do.Invoke[*providers.TaxonomyHandle](injector); err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}
	if _, err := do.Invoke[*service.SuggestionService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.UserService](injector); err != nil {
		return err
	}
	return nil
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector do.Injector) error {
	if err := BootstrapServices(injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.RateLimiterHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*api.Server](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
