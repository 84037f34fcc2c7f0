package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database/databasetest"
	dbmocks "github.com/vfg2006/sales-analytics-api/infrastructure/database/mocks"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func validRow(i int) Row {
	return Row{
		Date:        time.Date(2023, time.Month(i%12+1), i%28+1, 0, 0, 0, 0, time.UTC),
		ProductID:   fmt.Sprintf("PROD%03d", i%20+1),
		ProductName: fmt.Sprintf("Product %d", i%20+1),
		Region:      "North",
		Quantity:    decimal.NewFromInt(int64(i%100 + 1)),
		UnitPrice:   decimal.RequireFromString("12.50"),
	}
}

func derivedFrame(n int) *Frame {
	frame := &Frame{Rows: make([]Row, n)}
	for i := range frame.Rows {
		frame.Rows[i] = validRow(i)
	}
	return DeriveRevenue(frame)
}

// expectSession faz o provider mockado executar o callback com uma sessão mockada
// cuja transação repassa um Queryer nulo ao repositório
func expectSession(ctrl *gomock.Controller, provider *dbmocks.MockSessionProvider) *dbmocks.MockSession {
	sess := dbmocks.NewMockSession(ctrl)

	provider.EXPECT().
		WithSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(database.Session) error) error {
			return fn(sess)
		}).
		Times(1)

	sess.EXPECT().
		RunInTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(database.Queryer) error) error {
			return fn(nil)
		}).
		AnyTimes()

	return sess
}

func TestIngestor_Ingest(t *testing.T) {
	log.SetupTestLogger()
	storeErr := errors.New("connection reset by peer")

	tests := []struct {
		name      string
		frame     func() *Frame
		batchSize int
		setup     func(repo *mocks.MockSalesRepository)
		validate  func(t *testing.T, result Result, err error)
	}{
		{
			name:      "2500 linhas em lotes de 1000 geram 3 gravações",
			frame:     func() *Frame { return derivedFrame(2500) },
			batchSize: 1000,
			setup: func(repo *mocks.MockSalesRepository) {
				gomock.InOrder(
					expectInsert(repo, 1000),
					expectInsert(repo, 1000),
					expectInsert(repo, 500),
				)
			},
			validate: func(t *testing.T, result Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 2500, result.RecordsProcessed)
				assert.Empty(t, result.Errors)
			},
		},
		{
			name: "linhas não conversíveis viram erros e não entram no lote",
			frame: func() *Frame {
				frame := derivedFrame(10)
				frame.Rows[1].ProductID = "   "
				frame.Rows[4].Quantity = decimal.RequireFromString("2.5")
				frame.Rows[9].Region = strings.Repeat("r", 51)
				return frame
			},
			batchSize: 1000,
			setup: func(repo *mocks.MockSalesRepository) {
				expectInsert(repo, 7)
			},
			validate: func(t *testing.T, result Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 7, result.RecordsProcessed)
				require.Len(t, result.Errors, 3)
				assert.Equal(t, "Error processing row 2: product_id is required", result.Errors[0])
				assert.True(t, strings.HasPrefix(result.Errors[1], "Error processing row 5: quantity must be an integer"))
				assert.True(t, strings.HasPrefix(result.Errors[2], "Error processing row 10: region exceeds 50"))
			},
		},
		{
			name: "posição do erro é relativa ao dataset e não ao lote",
			frame: func() *Frame {
				frame := derivedFrame(5)
				frame.Rows[3].ProductName = ""
				return frame
			},
			batchSize: 2,
			setup: func(repo *mocks.MockSalesRepository) {
				gomock.InOrder(
					expectInsert(repo, 2),
					expectInsert(repo, 1),
					expectInsert(repo, 1),
				)
			},
			validate: func(t *testing.T, result Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 4, result.RecordsProcessed)
				assert.Equal(t, []string{"Error processing row 4: product_name is required"}, result.Errors)
			},
		},
		{
			name: "lote sem linhas válidas não grava",
			frame: func() *Frame {
				frame := derivedFrame(4)
				frame.Rows[2].Region = ""
				frame.Rows[3].Region = ""
				return frame
			},
			batchSize: 2,
			setup: func(repo *mocks.MockSalesRepository) {
				expectInsert(repo, 2)
			},
			validate: func(t *testing.T, result Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 2, result.RecordsProcessed)
				assert.Len(t, result.Errors, 2)
			},
		},
		{
			name: "checagem dupla de negativos e receita divergente",
			frame: func() *Frame {
				frame := derivedFrame(3)
				frame.Rows[0].Quantity = decimal.NewFromInt(-1)
				frame.Rows[0].TotalRevenue = ptr(frame.Rows[0].UnitPrice.Neg())
				wrong := decimal.NewFromInt(1)
				frame.Rows[1].TotalRevenue = &wrong
				frame.Rows[2].TotalRevenue = nil
				return frame
			},
			batchSize: 1000,
			setup:     func(repo *mocks.MockSalesRepository) {},
			validate: func(t *testing.T, result Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 0, result.RecordsProcessed)
				require.Len(t, result.Errors, 3)
				assert.Contains(t, result.Errors[0], "quantity must not be negative")
				assert.Contains(t, result.Errors[1], "does not match")
				assert.Contains(t, result.Errors[2], "total_revenue is missing")
			},
		},
		{
			name:      "falha do banco interrompe e mantém apenas lotes com commit",
			frame:     func() *Frame { return derivedFrame(2500) },
			batchSize: 1000,
			setup: func(repo *mocks.MockSalesRepository) {
				gomock.InOrder(
					expectInsert(repo, 1000),
					repo.EXPECT().
						InsertBatch(gomock.Any(), gomock.Any(), gomock.Len(1000)).
						Return(int64(0), storeErr),
				)
			},
			validate: func(t *testing.T, result Result, err error) {
				require.Error(t, err)
				assert.ErrorIs(t, err, storeErr)
				assert.Contains(t, err.Error(), "lote 2")
				assert.Equal(t, 1000, result.RecordsProcessed)
			},
		},
		{
			name:      "frame vazio abre e libera a sessão sem gravar",
			frame:     func() *Frame { return &Frame{} },
			batchSize: 1000,
			setup:     func(repo *mocks.MockSalesRepository) {},
			validate: func(t *testing.T, result Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 0, result.RecordsProcessed)
				assert.Empty(t, result.Errors)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			provider := dbmocks.NewMockSessionProvider(ctrl)
			repo := mocks.NewMockSalesRepository(ctrl)
			expectSession(ctrl, provider)
			tt.setup(repo)

			ingestor := NewIngestor(provider, repo, tt.batchSize)
			result, err := ingestor.Ingest(context.Background(), tt.frame())

			tt.validate(t, result, err)
		})
	}
}

func TestIngestor_Ingest_RowErrorProperty(t *testing.T) {
	log.SetupTestLogger()

	for _, tc := range []struct{ n, m int }{{1, 1}, {50, 0}, {50, 7}, {1200, 30}} {
		t.Run(fmt.Sprintf("N=%d M=%d", tc.n, tc.m), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := dbmocks.NewMockSessionProvider(ctrl)
			repo := mocks.NewMockSalesRepository(ctrl)
			expectSession(ctrl, provider)

			repo.EXPECT().
				InsertBatch(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ database.Queryer, sales []*domain.Sale) (int64, error) {
					return int64(len(sales)), nil
				}).
				AnyTimes()

			frame := derivedFrame(tc.n)
			for i := 0; i < tc.m; i++ {
				frame.Rows[i*(tc.n/tc.m)].ProductID = ""
			}

			result, err := NewIngestor(provider, repo, 100).Ingest(context.Background(), frame)

			require.NoError(t, err)
			assert.Equal(t, tc.n-tc.m, result.RecordsProcessed)
			assert.Len(t, result.Errors, tc.m)
		})
	}
}

func TestIngestor_Ingest_SQLite(t *testing.T) {
	log.SetupTestLogger()
	store := databasetest.NewSQLiteStore(t)
	repo := repository.NewSalesRepository(store.Dialect())

	frame := derivedFrame(2500)
	frame.Rows[10].ProductID = ""

	result, err := NewIngestor(store, repo, 1000).Ingest(context.Background(), frame)
	require.NoError(t, err)
	assert.Equal(t, 2499, result.RecordsProcessed)
	assert.Equal(t, []string{"Error processing row 11: product_id is required"}, result.Errors)
	assert.Equal(t, int64(0), store.OpenSessions())

	err = store.WithSession(context.Background(), func(sess database.Session) error {
		var count, mismatched int
		if err := sess.QueryRow(context.Background(), "SELECT COUNT(*) FROM sales").Scan(&count); err != nil {
			return err
		}
		if err := sess.QueryRow(context.Background(),
			"SELECT COUNT(*) FROM sales WHERE ABS(total_revenue - quantity * unit_price) > 0.000001").Scan(&mismatched); err != nil {
			return err
		}
		assert.Equal(t, 2499, count)
		assert.Equal(t, 0, mismatched)
		return nil
	})
	require.NoError(t, err)
}

func expectInsert(repo *mocks.MockSalesRepository, size int) *gomock.Call {
	return repo.EXPECT().
		InsertBatch(gomock.Any(), gomock.Any(), gomock.Len(size)).
		Return(int64(size), nil)
}

func ptr[T any](v T) *T {
	return &v
}
