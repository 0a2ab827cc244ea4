package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/connectapp/connect-server/internal/config"
	"github.com/connectapp/connect-server/internal/logger"
	"github.com/connectapp/connect-server/internal/metrics"
	"github.com/connectapp/connect-server/internal/service"
	"github.com/connectapp/connect-server/internal/taxonomy"
	"github.com/connectapp/connect-server/internal/validation"
)

// ProvideMetrics provides the Prometheus metrics set.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// TaxonomyHandle serves the active taxonomy and stops the file watcher on shutdown.
type TaxonomyHandle struct {
	taxonomy.Provider
	reloader *taxonomy.Reloader
	cancel   context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *TaxonomyHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.reloader != nil {
		return h.reloader.Close()
	}
	return nil
}

// ProvideTaxonomy provides the domain taxonomy: the built-in table, a YAML
// file, or a YAML file reloaded whenever it changes.
func ProvideTaxonomy(i do.Injector) (*TaxonomyHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	path := cfg.Suggestions.TaxonomyFile
	if path == "" {
		log.Info("Using built-in taxonomy")
		return &TaxonomyHandle{Provider: taxonomy.Static(taxonomy.Default())}, nil
	}

	if !cfg.Suggestions.WatchTaxonomy {
		tax, err := taxonomy.Load(path)
		if err != nil {
			return nil, err
		}
		log.Info("Taxonomy loaded", "path", path, "domains", len(tax.Names()))
		return &TaxonomyHandle{Provider: taxonomy.Static(tax)}, nil
	}

	reloader, err := taxonomy.NewReloader(path, log.Component("taxonomy"), taxonomy.ReloaderOptions{
		OnReload: m.RecordTaxonomyReload,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	reloader.Start(ctx)

	log.Info("Taxonomy watcher started",
		"path", reloader.Path(),
		"domains", len(reloader.Current().Names()),
	)

	return &TaxonomyHandle{Provider: reloader, reloader: reloader, cancel: cancel}, nil
}

// ProvideSuggestionService provides the suggestion engine.
func ProvideSuggestionService(i do.Injector) (*service.SuggestionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tax := do.MustInvoke[*TaxonomyHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSuggestionService(storeHandle.Store, tax.Provider, m, log.Component("suggestions")), nil
}

// ProvideUserService provides the user, profile and post service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, v, log.Component("users")), nil
}
