package ingesting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database/databasetest"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/ingestion"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/ingesting/mocks"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"go.uber.org/mock/gomock"
)

const header = "date,product_id,product_name,region,quantity,unit_price\n"

func TestService_Upload(t *testing.T) {
	log.SetupTestLogger()

	tests := []struct {
		name     string
		csv      string
		setup    func(ingester *mocks.MockIngester)
		validate func(t *testing.T, resp *domain.UploadResponse)
	}{
		{
			name: "quantidade negativa falha na validação e não chama a ingestão",
			csv:  header + "2023-01-05,P1,A,North,2,10.0\n2023-01-20,P1,A,North,-1,5.0\n",
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.False(t, resp.Success)
				assert.Equal(t, "Data validation failed", resp.Message)
				assert.Equal(t, []string{"Invalid data format or content"}, resp.Errors)
				assert.Nil(t, resp.RecordsProcessed)
			},
		},
		{
			name: "unit_price inválido é falha estrutural e não erro de linha",
			csv: header +
				"2023-01-05,P1,A,North,2,10\n" +
				"2023-01-06,P1,A,North,2,10\n" +
				"2023-01-07,P1,A,North,2,ten\n" +
				"2023-01-08,P1,A,North,2,10\n" +
				"2023-01-09,P1,A,North,2,10\n",
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.False(t, resp.Success)
				assert.Equal(t, "Data validation failed", resp.Message)
				assert.Nil(t, resp.RecordsProcessed)
			},
		},
		{
			name: "linha sem unit_price falha na validação",
			csv:  header + "2023-01-05,P1,A,North,2,10\n2023-01-06,P1,A,North,2\n",
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.False(t, resp.Success)
				assert.Equal(t, "Data validation failed", resp.Message)
				assert.Equal(t, []string{"Invalid data format or content"}, resp.Errors)
			},
		},
		{
			name: "ingestão concluída com erros de linha",
			csv:  header + "2023-01-05,P1,A,North,2,10.5\n2023-01-06,,B,South,1,5\n",
			setup: func(ingester *mocks.MockIngester) {
				ingester.EXPECT().
					Ingest(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, frame *ingestion.Frame) (ingestion.Result, error) {
						require.Equal(t, 2, frame.Len())
						require.NotNil(t, frame.Rows[0].TotalRevenue)
						assert.Equal(t, "21", frame.Rows[0].TotalRevenue.String())
						return ingestion.Result{
							RecordsProcessed: 1,
							Errors:           []string{"Error processing row 2: product_id is required"},
						}, nil
					})
			},
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.True(t, resp.Success)
				assert.Equal(t, "Successfully processed 1 records", resp.Message)
				require.NotNil(t, resp.RecordsProcessed)
				assert.Equal(t, 1, *resp.RecordsProcessed)
				assert.Equal(t, []string{"Error processing row 2: product_id is required"}, resp.Errors)
			},
		},
		{
			name: "ingestão sem erros omite a lista de erros",
			csv:  header + "2023-01-05,P1,A,North,2,10\n",
			setup: func(ingester *mocks.MockIngester) {
				ingester.EXPECT().
					Ingest(gomock.Any(), gomock.Any()).
					Return(ingestion.Result{RecordsProcessed: 1}, nil)
			},
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.True(t, resp.Success)
				assert.Equal(t, 1, *resp.RecordsProcessed)
				assert.Nil(t, resp.Errors)
			},
		},
		{
			name: "somente cabeçalho processa zero registros",
			csv:  header,
			setup: func(ingester *mocks.MockIngester) {
				ingester.EXPECT().
					Ingest(gomock.Any(), gomock.Any()).
					Return(ingestion.Result{}, nil)
			},
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.True(t, resp.Success)
				assert.Equal(t, "Successfully processed 0 records", resp.Message)
				assert.Equal(t, 0, *resp.RecordsProcessed)
			},
		},
		{
			name: "falha do banco vira resposta de erro com o texto da falha",
			csv:  header + "2023-01-05,P1,A,North,2,10\n",
			setup: func(ingester *mocks.MockIngester) {
				ingester.EXPECT().
					Ingest(gomock.Any(), gomock.Any()).
					Return(ingestion.Result{RecordsProcessed: 1000}, errors.New("database is locked"))
			},
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.False(t, resp.Success)
				assert.Equal(t, "Error processing file: database is locked", resp.Message)
				assert.Equal(t, []string{"database is locked"}, resp.Errors)
				assert.Nil(t, resp.RecordsProcessed)
			},
		},
		{
			name: "arquivo vazio é falha inesperada",
			csv:  "",
			validate: func(t *testing.T, resp *domain.UploadResponse) {
				assert.False(t, resp.Success)
				assert.True(t, strings.HasPrefix(resp.Message, "Error processing file: "))
				assert.Equal(t, []string{ingestion.ErrEmptyFile.Error()}, resp.Errors)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ingester := mocks.NewMockIngester(ctrl)
			if tt.setup != nil {
				tt.setup(ingester)
			}

			resp := NewService(ingester).Upload(context.Background(), strings.NewReader(tt.csv))

			require.NotNil(t, resp)
			tt.validate(t, resp)
		})
	}
}

func TestService_Upload_SQLite(t *testing.T) {
	log.SetupTestLogger()
	store := databasetest.NewSQLiteStore(t)
	repo := repository.NewSalesRepository(store.Dialect())
	service := NewService(ingestion.NewIngestor(store, repo, 2))

	countRows := func() int {
		var count int
		err := store.WithSession(context.Background(), func(sess database.Session) error {
			return sess.QueryRow(context.Background(), "SELECT COUNT(*) FROM sales").Scan(&count)
		})
		require.NoError(t, err)
		return count
	}

	rejected := service.Upload(context.Background(), strings.NewReader(
		header+"2023-01-05,P1,A,North,2,10.0\n2023-01-20,P1,A,North,-1,5.0\n"))
	assert.False(t, rejected.Success)
	assert.Equal(t, 0, countRows())

	accepted := service.Upload(context.Background(), strings.NewReader(header+
		"2023-01-05,P1,A,North,2,10.0\n"+
		"2023-01-20,P1,A,North,1,5.0\n"+
		"2023-02-01,P2,B,South,3,1.25\n"+
		"2023-02-02,P3,,East,1,1\n"+
		"2023-03-15,P2,B,South,2.5,4\n"))
	assert.True(t, accepted.Success)
	assert.Equal(t, 3, *accepted.RecordsProcessed)
	assert.Len(t, accepted.Errors, 2)
	assert.Equal(t, 3, countRows())
	assert.Equal(t, int64(0), store.OpenSessions())
}
