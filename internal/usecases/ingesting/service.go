package ingesting

import (
	"context"
	"fmt"
	"io"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/ingestion"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

const (
	validationFailedMessage = "Data validation failed"
	validationFailedDetail  = "Invalid data format or content"
)

// Uploader recebe um CSV de vendas e devolve o envelope de resposta do upload
type Uploader interface {
	Upload(ctx context.Context, file io.Reader) *domain.UploadResponse
}

// Ingester grava um Frame já validado e com receita calculada
type Ingester interface {
	Ingest(ctx context.Context, frame *ingestion.Frame) (ingestion.Result, error)
}

type Service struct {
	ingester Ingester
}

func NewService(ingester Ingester) Uploader {
	return &Service{
		ingester: ingester,
	}
}

// Upload executa leitura, validação, cálculo da receita e ingestão.
// Falhas nunca viram erro Go: tudo é traduzido para o envelope de resposta.
func (s *Service) Upload(ctx context.Context, file io.Reader) *domain.UploadResponse {
	logger := log.ForContext(ctx)
	if uploadID, err := utils.GenerateID(); err == nil {
		logger = logger.WithField("upload_id", uploadID)
	}

	ds, err := ingestion.ReadDataset(file)
	if err != nil {
		logger.WithError(err).Warn("Erro ao ler arquivo CSV")
		return FaultResponse(err)
	}

	logger.Infof("Arquivo recebido com %d linhas", ds.Len())

	frame, ok := ingestion.NewValidator(logger).Validate(ds)
	if !ok {
		return &domain.UploadResponse{
			Success: false,
			Message: validationFailedMessage,
			Errors:  []string{validationFailedDetail},
		}
	}

	result, err := s.ingester.Ingest(ctx, ingestion.DeriveRevenue(frame))
	if err != nil {
		logger.WithError(err).
			WithField("records", result.RecordsProcessed).
			Error("Ingestão interrompida por falha do banco")
		return FaultResponse(err)
	}

	records := result.RecordsProcessed
	response := &domain.UploadResponse{
		Success:          true,
		Message:          fmt.Sprintf("Successfully processed %d records", records),
		RecordsProcessed: &records,
	}
	if len(result.Errors) > 0 {
		response.Errors = result.Errors
	}

	return response
}

// FaultResponse monta o envelope de falha inesperada com o texto do erro
func FaultResponse(err error) *domain.UploadResponse {
	return &domain.UploadResponse{
		Success: false,
		Message: fmt.Sprintf("Error processing file: %s", err),
		Errors:  []string{err.Error()},
	}
}
