// Package databasetest cria bancos sqlite temporários para testes de integração
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/internal/config"
)

// NewSQLiteStore abre um Store em arquivo temporário, já inicializado, fechado no fim do teste.
// Um arquivo (e não :memory:) garante que todas as conexões do pool vejam o mesmo banco.
func NewSQLiteStore(tb testing.TB) *database.Store {
	tb.Helper()

	ctx := context.Background()
	store, err := database.Open(ctx, config.Database{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(tb.TempDir(), "sales.db"),
		MaxOpenConns: 4,
	})
	require.NoError(tb, err)

	tb.Cleanup(func() {
		_ = store.Close()
	})

	require.NoError(tb, store.Initialize(ctx))
	return store
}
