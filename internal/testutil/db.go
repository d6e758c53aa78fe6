package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/xxxsen/textlens/internal/config"
	"github.com/xxxsen/textlens/internal/db"
)

const TestDriver = "sqlite"

// OpenTestDB opens a migrated sqlite database inside the test's temp dir.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver: TestDriver,
		DSN:    filepath.Join(t.TempDir(), "textlens_test.db"),
	}
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(context.Background(), conn, cfg.Driver); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}
