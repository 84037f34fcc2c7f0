package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vfg2006/sales-analytics-api/internal/usecases/ingesting"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const (
	uploadFormField = "file"
	// Partes maiores que isso vão para arquivo temporário durante o parse do multipart
	multipartMemory = 32 << 20
)

// UploadCSV recebe o arquivo no campo multipart "file". A resposta usa sempre o envelope
// {success, message, records_processed, errors}, exceto nas checagens de entrada (400).
func UploadCSV(uploader ingesting.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				logger.WithError(err).Warn("Upload acima do tamanho máximo")
				writeJSON(w, r, http.StatusOK, ingesting.FaultResponse(err))
				return
			}

			logger.WithError(err).Warn("Requisição de upload inválida")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "multipart form with a 'file' field is required", nil)
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "multipart field 'file' is required", nil)
			return
		}
		defer file.Close()

		if !strings.HasSuffix(header.Filename, ".csv") {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "File must be a CSV", nil)
			return
		}

		logger.WithFields(log.Fields{
			"ingest_filename": header.Filename,
			"ingest_size":     header.Size,
		}).Info("Upload de CSV recebido")

		writeJSON(w, r, http.StatusOK, uploader.Upload(r.Context(), file))
	}
}
