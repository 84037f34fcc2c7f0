package handler

import (
	"net/http"

	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

// GetMonthlySummary responde o resumo mensal filtrado por start_date, end_date, region e product_id
func GetMonthlySummary(reporter reporting.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filters, err := reporting.ParseFilters(
			query.Get("start_date"),
			query.Get("end_date"),
			query.Get("region"),
			query.Get("product_id"),
		)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		summaries, err := reporter.MonthlySummary(r.Context(), filters)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao buscar resumo mensal")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar resumo mensal", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, summaries)
	}
}

// GetTopProducts responde os produtos com maior receita; limit vai de 1 a 100 (padrão 5)
func GetTopProducts(reporter reporting.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		limit, err := reporting.ParseLimit(query.Get("limit"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrOutOfRange, err.Error(), nil)
			return
		}

		filters, err := reporting.ParseFilters(
			query.Get("start_date"),
			query.Get("end_date"),
			query.Get("region"),
			"",
		)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		products, err := reporter.TopProducts(r.Context(), filters, limit)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao buscar top produtos")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar top produtos", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, products)
	}
}
