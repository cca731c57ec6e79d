package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

// openStoreForIntegrationTest открывает базу из KOMS_POSTGRES_TEST_DSN и применяет миграции.
// Без переменной окружения тест пропускается.
func openStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("KOMS_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("KOMS_POSTGRES_TEST_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Open(ctx, dsn, PoolOptions{MaxOpenConns: 4})
	if err != nil {
		t.Skipf("postgres is not available: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if _, err := store.DB().ExecContext(ctx, `TRUNCATE TABLE documents`); err != nil {
		t.Fatalf("truncate documents: %v", err)
	}
	return store
}
