package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/textlens/internal/config"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")}
	conn, err := Open(cfg)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, ApplyMigrations(context.Background(), conn, cfg.Driver))
	// second run is a no-op
	require.NoError(t, ApplyMigrations(context.Background(), conn, cfg.Driver))

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	require.Equal(t, 0, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
	require.Error(t, ApplyMigrations(context.Background(), nil, "mysql"))
}
