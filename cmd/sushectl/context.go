package main

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/magnusoverli/sushe-online-sub003/internal/config"
	"github.com/magnusoverli/sushe-online-sub003/internal/di"
)

// commandContext builds the DI container the first time a command needs it
// and remembers it for shutdown.
type commandContext struct {
	dataPath *string
	logLevel *string
	jsonOut  *bool

	injector *do.RootScope
}

func newCommandContext(dataPath, logLevel *string, jsonOut *bool) *commandContext {
	return &commandContext{
		dataPath: dataPath,
		logLevel: logLevel,
		jsonOut:  jsonOut,
	}
}

// ensureContainer loads configuration and bootstraps the object graph. Flag
// overrides travel through the same environment keys config reads, so path
// expansion and validation stay in one place.
func (c *commandContext) ensureContainer() (*do.RootScope, error) {
	if c.injector != nil {
		return c.injector, nil
	}

	if *c.dataPath != "" {
		if err := os.Setenv("SUSHE_DATA_PATH", *c.dataPath); err != nil {
			return nil, err
		}
	}
	if *c.logLevel != "" {
		if err := os.Setenv("SUSHE_LOG_LEVEL", *c.logLevel); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	injector := di.NewContainer(cfg)
	if err := di.Bootstrap(injector); err != nil {
		return nil, fmt.Errorf("initialize services: %w", err)
	}

	c.injector = injector
	return injector, nil
}

// json reports whether the operator asked for JSON output.
func (c *commandContext) json() bool {
	return *c.jsonOut
}

// shutdown closes everything the container built, in reverse dependency
// order. Safe to call when no command ever needed the container.
func (c *commandContext) shutdown() {
	if c.injector == nil {
		return
	}
	if err := c.injector.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
}
