package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/metrics"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const DefaultBatchSize = 1000

// Result resume uma ingestão concluída ou interrompida por falha do banco
type Result struct {
	// RecordsProcessed conta apenas linhas de lotes com commit
	RecordsProcessed int
	Errors           []string
}

type Ingestor struct {
	provider  database.SessionProvider
	repo      repository.SalesRepository
	batchSize int
}

func NewIngestor(provider database.SessionProvider, repo repository.SalesRepository, batchSize int) *Ingestor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Ingestor{
		provider:  provider,
		repo:      repo,
		batchSize: batchSize,
	}
}

// Ingest grava o Frame em lotes, cada lote em uma transação própria, usando uma única sessão.
// Linhas que não convertem viram entradas em Result.Errors; falhas do banco interrompem a ingestão
// e são retornadas junto com o total já gravado.
func (i *Ingestor) Ingest(ctx context.Context, frame *Frame) (Result, error) {
	// Um cliente que desconecta não interrompe lotes em andamento
	ctx = context.WithoutCancel(ctx)
	logger := log.ForContext(ctx)

	result := Result{}
	total := frame.Len()
	metrics.RowsReceived.Add(float64(total))

	err := i.provider.WithSession(ctx, func(sess database.Session) error {
		for start := 0; start < total; start += i.batchSize {
			end := min(start+i.batchSize, total)
			batchNumber := start/i.batchSize + 1
			batchLogger := logger.WithFields(log.Fields{
				"batch":           batchNumber,
				"ingest_batch_id": uuid.NewString(),
			})

			sales := make([]*domain.Sale, 0, end-start)
			for offset, row := range frame.Rows[start:end] {
				sale, err := toSale(row)
				if err != nil {
					rowErr := &RowError{Row: start + offset + 1, Err: err}
					result.Errors = append(result.Errors, rowErr.Error())
					metrics.RowErrors.Inc()
					batchLogger.Debug(rowErr.Error())
					continue
				}
				sales = append(sales, sale)
			}

			if len(sales) == 0 {
				batchLogger.Warnf("Lote %d sem linhas válidas, nada a gravar", batchNumber)
				continue
			}

			written, err := i.writeBatch(ctx, sess, sales)
			if err != nil {
				metrics.BatchFailures.Inc()
				batchLogger.WithError(err).Errorf("Falha ao gravar lote %d", batchNumber)
				return errors.Wrapf(err, "falha ao gravar lote %d", batchNumber)
			}

			result.RecordsProcessed += len(sales)
			metrics.BatchesCommitted.Inc()
			metrics.RowsWritten.Add(float64(len(sales)))

			batchLogger.WithField("records", written).
				Debugf("Lote %d gravado: %d linhas (%d/%d)", batchNumber, len(sales), end, total)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logger.WithField("records", result.RecordsProcessed).
		Infof("Ingestão concluída: %d linhas gravadas, %d com erro", result.RecordsProcessed, len(result.Errors))

	return result, nil
}

func (i *Ingestor) writeBatch(ctx context.Context, sess database.Session, sales []*domain.Sale) (int64, error) {
	started := time.Now()
	defer func() {
		metrics.BatchWriteDuration.Observe(time.Since(started).Seconds())
	}()

	var written int64
	err := sess.RunInTransaction(ctx, func(q database.Queryer) error {
		n, err := i.repo.InsertBatch(ctx, q, sales)
		written = n
		return err
	})

	return written, err
}

// toSale converte uma linha validada; repete a checagem de negativos feita pelo Validator
func toSale(row Row) (*domain.Sale, error) {
	productID, err := requiredText("product_id", row.ProductID, database.ProductIDMaxLength)
	if err != nil {
		return nil, err
	}
	productName, err := requiredText("product_name", row.ProductName, database.ProductNameMaxLength)
	if err != nil {
		return nil, err
	}
	region, err := requiredText("region", row.Region, database.RegionMaxLength)
	if err != nil {
		return nil, err
	}

	if !row.Quantity.IsInteger() {
		return nil, fmt.Errorf("quantity must be an integer, got %s", row.Quantity)
	}
	quantityInt := row.Quantity.BigInt()
	if !quantityInt.IsInt64() {
		return nil, fmt.Errorf("quantity out of range: %s", row.Quantity)
	}
	quantity := quantityInt.Int64()

	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative, got %d", quantity)
	}
	if row.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("unit_price must not be negative, got %s", row.UnitPrice)
	}

	if row.TotalRevenue == nil {
		return nil, fmt.Errorf("total_revenue is missing")
	}
	if expected := domain.Revenue(quantity, row.UnitPrice); !row.TotalRevenue.Equal(expected) {
		return nil, fmt.Errorf("total_revenue %s does not match quantity × unit_price (%s)", row.TotalRevenue, expected)
	}

	return &domain.Sale{
		Date:         row.Date,
		ProductID:    productID,
		ProductName:  productName,
		Region:       region,
		Quantity:     quantity,
		UnitPrice:    row.UnitPrice,
		TotalRevenue: *row.TotalRevenue,
	}, nil
}

func requiredText(column, value string, maxLength int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", column)
	}
	if utf8.RuneCountInString(value) > maxLength {
		return "", fmt.Errorf("%s exceeds %d characters", column, maxLength)
	}
	return value, nil
}
