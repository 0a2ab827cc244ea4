package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/connectapp/connect-server/internal/config"
	"github.com/connectapp/connect-server/internal/logger"
	"github.com/connectapp/connect-server/internal/store"
	"github.com/connectapp/connect-server/internal/store/badger"
	"github.com/connectapp/connect-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured storage backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		st  store.Store
		err error
	)
	switch cfg.Database.Backend {
	case config.BackendBadger:
		st, err = badger.Open(cfg.Database.Path, log.Component("badger"))
	case config.BackendSQLite:
		st, err = sqlite.Open(cfg.Database.Path, log.Component("sqlite"))
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized",
		"backend", cfg.Database.Backend,
		"path", cfg.Database.Path,
	)

	return &StoreHandle{Store: st}, nil
}
