// Package databasetest поднимает мигрированную sqlite-базу для тестов.
package databasetest

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/catalog-api/internal/config"
	"github.com/catalog-api/internal/database"
)

// New открывает временную sqlite-базу, применяет миграции и закрывает её по завершении теста
func New(tb testing.TB) *database.Store {
	tb.Helper()

	cfg := config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		SQLitePath:      filepath.Join(tb.TempDir(), "catalog.db"),
		ConnectAttempts: 1,
	}

	store, err := database.Open(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		tb.Fatalf("open store: %v", err)
	}
	tb.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(); err != nil {
		tb.Fatalf("migrate store: %v", err)
	}

	return store
}
