package providers

import (
	"github.com/samber/do/v2"

	"github.com/magnusoverli/sushe-online-sub003/internal/config"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the badger-backed store with the invalidation
// fanout as its event emitter.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fanout := do.MustInvoke[*FanoutHandle](i)

	db, err := store.New(cfg.StorePath(), log, fanout.Fanout)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: db}, nil
}
