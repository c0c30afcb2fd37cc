package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
)

// invalidateTimeout bounds a single Invalidate call so a stalled cache
// backend cannot wedge the worker.
const invalidateTimeout = 5 * time.Second

// FanoutConfig tunes the fanout worker. Zero values fall back to defaults
// suitable for interactive tooling.
type FanoutConfig struct {
	BufferSize    int
	RatePerSecond float64
	Burst         int
}

// Fanout applies invalidation events to an Invalidator on a single worker
// goroutine. Emit never blocks: when the buffer is full the event is dropped
// and logged. Invalidation is best-effort by contract, so failures are
// logged and never propagate to the write that caused them.
type Fanout struct {
	invalidator Invalidator
	logger      *logger.Logger
	limiter     *rate.Limiter
	events      chan Event
	done        chan struct{}

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewFanout creates a fanout and starts its worker goroutine.
func NewFanout(invalidator Invalidator, log *logger.Logger, cfg FanoutConfig) *Fanout {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 50
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	f := &Fanout{
		invalidator: invalidator,
		logger:      log,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		events:      make(chan Event, cfg.BufferSize),
		done:        make(chan struct{}),
	}
	go f.run()
	return f
}

// Emit queues an event for the worker. It implements the store's event
// emitter seam, so it accepts any and drops everything that is not an Event.
func (f *Fanout) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		f.logger.Error("invalid invalidation event type", "type", fmt.Sprintf("%T", event))
		return
	}

	// Hold the read lock through the send so Shutdown cannot close the
	// channel between the shutdown check and the send.
	f.shutdownMu.RLock()
	defer f.shutdownMu.RUnlock()

	if f.shutdown {
		return
	}

	select {
	case f.events <- evt:
	default:
		f.logger.Warn("invalidation buffer full, dropping event",
			"pattern", evt.Pattern,
			"reason", evt.Reason)
	}
}

// EmitUser queues an invalidation for a single user.
func (f *Fanout) EmitUser(reason, userID string) {
	f.Emit(NewUserInvalidation(reason, userID))
}

func (f *Fanout) run() {
	defer close(f.done)

	for evt := range f.events {
		if err := f.limiter.Wait(context.Background()); err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
		err := f.invalidator.Invalidate(ctx, evt.Pattern)
		cancel()

		if err != nil {
			f.logger.WithError(err).Warn("cache invalidation failed",
				"pattern", evt.Pattern,
				"reason", evt.Reason)
			continue
		}

		f.logger.Debug("cache invalidated",
			"pattern", evt.Pattern,
			"reason", evt.Reason)
	}
}

// Shutdown stops accepting events and drains what is already queued. It
// returns early with the context error if draining outlives the context.
func (f *Fanout) Shutdown(ctx context.Context) error {
	f.shutdownMu.Lock()
	if f.shutdown {
		f.shutdownMu.Unlock()
		<-f.done
		return nil
	}
	f.shutdown = true
	f.shutdownMu.Unlock()

	close(f.events)

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
