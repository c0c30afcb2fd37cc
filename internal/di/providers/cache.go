package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/magnusoverli/sushe-online-sub003/internal/cache"
	"github.com/magnusoverli/sushe-online-sub003/internal/config"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
)

// ProvideInvalidator provides the response cache hook. The cache itself
// belongs to the web application and this process has no endpoint to call,
// so the default binding is the no-op; the fanout's logging remains the
// observable effect. An embedding process overrides this provider with a
// real client.
func ProvideInvalidator(i do.Injector) (cache.Invalidator, error) {
	return cache.NewNoop(), nil
}

// FanoutHandle wraps the invalidation fanout with shutdown draining.
type FanoutHandle struct {
	*cache.Fanout
}

// Shutdown implements do.Shutdownable.
func (h *FanoutHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Fanout.Shutdown(ctx)
}

// ProvideFanout provides the invalidation fanout worker.
func ProvideFanout(i do.Injector) (*FanoutHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	invalidator := do.MustInvoke[cache.Invalidator](i)

	fanout := cache.NewFanout(invalidator, log, cache.FanoutConfig{
		BufferSize:    cfg.Invalidation.BufferSize,
		RatePerSecond: float64(cfg.Invalidation.RatePerSecond),
		Burst:         cfg.Invalidation.Burst,
	})

	return &FanoutHandle{Fanout: fanout}, nil
}
