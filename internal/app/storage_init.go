package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/docstore"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/memory"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/postgres"
)

// initStorage открывает документное хранилище выбранного драйвера.
// Возвращённый closer освобождает соединения.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (docstore.Store, func() error, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory document store")
		return memory.NewDocumentStore(docstore.Tables()...), func() error { return nil }, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres storage requires DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN, postgres.PoolOptions{MaxOpenConns: cfg.PostgresMaxOpenConns})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			applied, err := store.MigrateUp(ctx, 0)
			if err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("migrate postgres: %w", err)
			}
			logger.WithField("applied", applied).Info("postgres migrations applied")
		}
		logger.Info("using postgres document store")
		return postgres.NewDocumentStore(store, docstore.Tables()...), store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
