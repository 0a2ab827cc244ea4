// Package cmd implements the connectctl commands.
package cmd

import (
	"context"
	"io"

	"github.com/goccy/go-json"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/connectapp/connect-server/internal/config"
	"github.com/connectapp/connect-server/internal/di"
	"github.com/connectapp/connect-server/internal/di/providers"
	"github.com/connectapp/connect-server/internal/logger"
	"github.com/connectapp/connect-server/internal/service"
	"github.com/connectapp/connect-server/internal/taxonomy"
)

// rootOptions are the persistent flags, forwarded to config loading.
type rootOptions struct {
	envFile      string
	logLevel     string
	dbBackend    string
	dbPath       string
	taxonomyFile string
}

// configArgs renders the options as config flags. Unset options are left
// out so environment variables and defaults still apply.
func (o *rootOptions) configArgs() []string {
	var args []string
	for _, f := range []struct{ name, value string }{
		{"env-file", o.envFile},
		{"log-level", o.logLevel},
		{"db-backend", o.dbBackend},
		{"db-path", o.dbPath},
		{"taxonomy-file", o.taxonomyFile},
	} {
		if f.value != "" {
			args = append(args, "-"+f.name, f.value)
		}
	}
	return args
}

// app is what a command needs from the container.
type app struct {
	users       *service.UserService
	suggestions *service.SuggestionService
	taxonomy    taxonomy.Provider
}

// run builds the services, calls fn and shuts everything down again.
// Logs go to the command's stderr so stdout stays machine-readable.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	injector := di.NewContainer(o.configArgs())
	defer injector.Shutdown()

	do.Override(injector, func(i do.Injector) (*logger.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		level, _ := logger.ParseLevel(cfg.Logger.Level)
		return logger.New(logger.Config{
			Writer:      cmd.ErrOrStderr(),
			Format:      cfg.Logger.Format,
			Environment: cfg.App.Environment,
			Level:       level,
		}), nil
	})

	if err := di.BootstrapServices(injector); err != nil {
		return err
	}

	return fn(cmd.Context(), &app{
		users:       do.MustInvoke[*service.UserService](injector),
		suggestions: do.MustInvoke[*service.SuggestionService](injector),
		taxonomy:    do.MustInvoke[*providers.TaxonomyHandle](injector).Provider,
	})
}

// NewRootCmd builds the connectctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "connectctl",
		Short:         "Connect suggestion engine tools",
		Long:          "Seed data, inspect the taxonomy and compute peer suggestions against the configured store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", "", "Path to .env file (default: .env)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.dbBackend, "db-backend", "", "Storage backend (sqlite, badger)")
	pf.StringVar(&opts.dbPath, "db-path", "", "SQLite file or Badger directory")
	pf.StringVar(&opts.taxonomyFile, "taxonomy-file", "", "YAML domain taxonomy (default: built-in)")

	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newSuggestCmd(opts))
	root.AddCommand(newByDomainCmd(opts))
	root.AddCommand(newTaxonomyCmd(opts))

	return root
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
