// Package metrics expõe os coletores prometheus da ingestão de vendas
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sales_ingest"

var (
	RowsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_received_total",
		Help:      "Total de linhas validadas recebidas pelo ingestor",
	})

	RowsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_written_total",
		Help:      "Total de linhas gravadas na tabela de vendas",
	})

	RowErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "row_errors_total",
		Help:      "Total de linhas descartadas por erro de conversão",
	})

	BatchesCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_committed_total",
		Help:      "Total de lotes gravados com commit",
	})

	BatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_failures_total",
		Help:      "Total de lotes abortados por falha do banco",
	})

	BatchWriteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_write_duration_seconds",
		Help:      "Tempo de gravação de um lote",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms a ~2s
	})
)

func init() {
	prometheus.MustRegister(
		RowsReceived,
		RowsWritten,
		RowErrors,
		BatchesCommitted,
		BatchFailures,
		BatchWriteDuration,
	)
}

// RegisterOpenSessions publica o número de sessões reservadas no banco
func RegisterOpenSessions(fn func() int64) error {
	return prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sales_store",
		Name:      "open_sessions",
		Help:      "Sessões do banco reservadas no momento",
	}, func() float64 {
		return float64(fn())
	}))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
