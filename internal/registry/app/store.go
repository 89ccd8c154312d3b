package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/registry/internal/registry/store"
	"github.com/aussiebroadwan/registry/internal/registry/store/drivers/postgres"
	"github.com/aussiebroadwan/registry/internal/registry/store/drivers/sqlite"
	"github.com/aussiebroadwan/registry/pkg/cryptox"
)

// OpenStore connects to the configured database. Migrations are not applied.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	key, ephemeral, err := cryptox.LoadMasterKey(cfg.MasterKeyPath, cfg.MasterKey)
	if err != nil {
		return nil, err
	}
	if ephemeral {
		logger.Warn("no master key configured, stored credentials will be unreadable after restart")
	}

	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential sealer: %w", err)
	}

	if cfg.DatabaseDriver == DriverPostgres {
		db, err := postgres.NewStore(ctx, cfg.DatabaseURL, sealer)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db, nil
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn, sealer)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}
