// Package providers contains dependency injection providers for the Connect server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/connectapp/connect-server/internal/config"
	"github.com/connectapp/connect-server/internal/logger"
)

// Args are the command-line arguments handed to config.Load.
type Args []string

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	args := do.MustInvoke[Args](i)
	return config.Load(args)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	level, _ := logger.ParseLevel(cfg.Logger.Level)
	log := logger.New(logger.Config{
		Level:       level,
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Connect Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"db_backend", cfg.Database.Backend,
		"db_path", cfg.Database.Path,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
