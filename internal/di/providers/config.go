// Package providers contains dependency injection providers for the SuShe tooling.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/magnusoverli/sushe-online-sub003/internal/config"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
)

// ProvideLogger provides the structured logger. Logs go to stderr so
// command output on stdout stays machine-readable.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}
