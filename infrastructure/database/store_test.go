package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database/databasetest"
	"github.com/vfg2006/sales-analytics-api/internal/config"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "sqlite", want: "sqlite"},
		{driver: "SQLite3", want: "sqlite"},
		{driver: "postgres", want: "postgres"},
		{driver: "postgresql", want: "postgres"},
		{driver: "mysql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dialect, err := database.DialectFor(tt.driver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dialect.Name)
		})
	}
}

func TestDialect_MonthExprAndPlaceholders(t *testing.T) {
	assert.Equal(t, "strftime('%Y-%m', date)", database.SQLite.MonthExpr("date"))
	assert.Equal(t, "to_char(date, 'YYYY-MM')", database.Postgres.MonthExpr("date"))

	sqlQuery, _, err := database.Postgres.StatementBuilder().
		Select("1").From("sales").Where(squirrel.Eq{"region": "North"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM sales WHERE region = $1", sqlQuery)
}

func TestDialect_SchemaStatements(t *testing.T) {
	for _, dialect := range []database.Dialect{database.SQLite, database.Postgres} {
		t.Run(dialect.Name, func(t *testing.T) {
			statements := dialect.SchemaStatements()
			require.Len(t, statements, 1+len(database.SalesIndexes))

			assert.Contains(t, statements[0], "CREATE TABLE IF NOT EXISTS sales")
			assert.Contains(t, statements[0], "product_id VARCHAR(50) NOT NULL")
			assert.Contains(t, statements[0], "product_name VARCHAR(100) NOT NULL")
			assert.Contains(t, statements[1], "CREATE INDEX IF NOT EXISTS idx_date ON sales (date)")
			assert.Contains(t, statements[4], "idx_date_product ON sales (date, product_id)")
		})
	}
}

func TestStore_Initialize_Idempotent(t *testing.T) {
	store := databasetest.NewSQLiteStore(t)
	ctx := context.Background()

	// Segunda execução não pode falhar nem duplicar objetos
	require.NoError(t, store.Initialize(ctx))

	var names []string
	err := store.WithSession(ctx, func(sess database.Session) error {
		rows, err := sess.Query(ctx,
			"SELECT name FROM sqlite_master WHERE tbl_name = 'sales' AND type = 'index' AND name LIKE 'idx_%' ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"idx_date", "idx_date_product", "idx_product_id", "idx_region"}, names)
}

func TestStore_SchemaRejectsNegativeValues(t *testing.T) {
	store := databasetest.NewSQLiteStore(t)
	ctx := context.Background()
	insert := "INSERT INTO sales (date, product_id, product_name, region, quantity, unit_price, total_revenue) VALUES (?, ?, ?, ?, ?, ?, ?)"

	tests := []struct {
		name      string
		quantity  int64
		unitPrice string
		wantErr   bool
	}{
		{name: "quantidade negativa", quantity: -1, unitPrice: "1", wantErr: true},
		{name: "preço negativo em texto", quantity: 1, unitPrice: "-0.5", wantErr: true},
		{name: "valores válidos", quantity: 1, unitPrice: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.WithSession(ctx, func(sess database.Session) error {
				_, err := sess.Exec(ctx, insert, "2023-01-01", "P1", "A", "North", tt.quantity, tt.unitPrice, tt.unitPrice)
				return err
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDialect_MoneyExpr(t *testing.T) {
	assert.Equal(t, "CAST(unit_price AS REAL)", database.SQLite.MoneyExpr("unit_price"))
	assert.Equal(t, "unit_price", database.Postgres.MoneyExpr("unit_price"))
	assert.Contains(t, database.SQLite.SchemaStatements()[0], "unit_price TEXT NOT NULL CHECK (CAST(unit_price AS REAL) >= 0)")
	assert.Contains(t, database.Postgres.SchemaStatements()[0], "unit_price NUMERIC NOT NULL CHECK (unit_price >= 0)")
}

func TestStore_WithSession_ReleasesOnEveryPath(t *testing.T) {
	store := databasetest.NewSQLiteStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	require.NoError(t, store.WithSession(ctx, func(sess database.Session) error {
		assert.Equal(t, int64(1), store.OpenSessions())
		return nil
	}))
	assert.Equal(t, int64(0), store.OpenSessions())

	err := store.WithSession(ctx, func(sess database.Session) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), store.OpenSessions())

	assert.Panics(t, func() {
		_ = store.WithSession(ctx, func(sess database.Session) error { panic("kaboom") })
	})
	assert.Equal(t, int64(0), store.OpenSessions())
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	store := databasetest.NewSQLiteStore(t)
	ctx := context.Background()

	sess, err := store.OpenSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), store.OpenSessions())

	require.NoError(t, sess.Close())
	_ = sess.Close()
	assert.Equal(t, int64(0), store.OpenSessions())

	_, err = sess.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, database.ErrSessionClosed)

	_, err = sess.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, database.ErrSessionClosed)

	var n int
	row := sess.QueryRow(ctx, "SELECT 1")
	assert.ErrorIs(t, row.Err(), database.ErrSessionClosed)
	assert.ErrorIs(t, row.Scan(&n), database.ErrSessionClosed)

	err = sess.RunInTransaction(ctx, func(database.Queryer) error { return nil })
	assert.ErrorIs(t, err, database.ErrSessionClosed)
}

func TestSession_RunInTransaction(t *testing.T) {
	store := databasetest.NewSQLiteStore(t)
	ctx := context.Background()
	insert := "INSERT INTO sales (date, product_id, product_name, region, quantity, unit_price, total_revenue) " +
		"VALUES ('2023-01-01', 'P1', 'A', 'North', 1, 1, 1)"

	count := func(sess database.Session) int {
		var n int
		require.NoError(t, sess.QueryRow(ctx, "SELECT COUNT(*) FROM sales").Scan(&n))
		return n
	}

	err := store.WithSession(ctx, func(sess database.Session) error {
		err := sess.RunInTransaction(ctx, func(q database.Queryer) error {
			if _, err := q.Exec(ctx, insert); err != nil {
				return err
			}
			return errors.New("rollback")
		})
		assert.EqualError(t, err, "rollback")
		assert.Equal(t, 0, count(sess))

		require.NoError(t, sess.RunInTransaction(ctx, func(q database.Queryer) error {
			_, err := q.Exec(ctx, insert)
			return err
		}))
		assert.Equal(t, 1, count(sess))
		return nil
	})
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	_, err := database.Open(context.Background(), config.Database{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "open.db")
	store, err := database.Open(context.Background(), config.Database{Driver: config.DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, database.SQLite, store.Dialect())
	assert.NoError(t, store.Ping(context.Background()))

	var journalMode string
	err = store.WithSession(context.Background(), func(sess database.Session) error {
		return sess.QueryRow(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
	})
	require.NoError(t, err)
	assert.Equal(t, "wal", strings.ToLower(journalMode))
}
