// Package di provides dependency injection configuration for the SuShe tooling.
package di

import (
	"github.com/samber/do/v2"

	"github.com/magnusoverli/sushe-online-sub003/internal/config"
	"github.com/magnusoverli/sushe-online-sub003/internal/di/providers"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
// Config comes in as a value: the CLI loads it and applies flag overrides
// before any provider runs.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Invalidation fanout
	do.Provide(injector, providers.ProvideInvalidator)
	do.Provide(injector, providers.ProvideFanout)

	// Storage and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideDedupService)
	do.Provide(injector, providers.ProvideReconcileService)
	do.Provide(injector, providers.ProvideMergeService)
	do.Provide(injector, providers.ProvideImporter)

	return injector
}

// Bootstrap initializes the core object graph so wiring failures surface
// before command logic runs. Invoking the search index here also binds it
// to the store, so album writes from any command reach the index.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.FanoutHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	return nil
}
