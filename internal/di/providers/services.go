package providers

import (
	"github.com/samber/do/v2"

	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/migrate"
	"github.com/magnusoverli/sushe-online-sub003/internal/service"
	"github.com/magnusoverli/sushe-online-sub003/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideDedupService provides duplicate detection, audit reporting and fix
// execution.
func ProvideDedupService(i do.Injector) (*service.DedupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	fanout := do.MustInvoke[*FanoutHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDedupService(storeHandle.Store, fanout.Fanout, validator, log), nil
}

// ProvideReconcileService provides manual album reconciliation.
func ProvideReconcileService(i do.Injector) (*service.ReconcileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReconcileService(storeHandle.Store, log), nil
}

// ProvideMergeService provides the manual album merge executor.
func ProvideMergeService(i do.Injector) (*service.MergeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	fanout := do.MustInvoke[*FanoutHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMergeService(storeHandle.Store, fanout.Fanout, validator, log), nil
}

// ProvideImporter provides the legacy library importer.
func ProvideImporter(i do.Injector) (*migrate.Importer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return migrate.NewImporter(storeHandle.Store, log), nil
}
