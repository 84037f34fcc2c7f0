package handler

import (
	"net/http"

	"github.com/vfg2006/sales-analytics-api/internal/api/handler/router"
	"github.com/vfg2006/sales-analytics-api/internal/metrics"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/ingesting"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/middleware"
)

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: metrics.Handler(),
		},
	}
}

func Upload(uploader ingesting.Uploader, maxUploadBytes int64) []router.Route {
	return []router.Route{
		{
			Path:        "/api/upload-csv",
			Method:      http.MethodPost,
			Handler:     UploadCSV(uploader),
			Middlewares: []func(http.Handler) http.Handler{middleware.MaxBodySize(maxUploadBytes)},
		},
	}
}

func Analytics(reporter reporting.Reporter) []router.Route {
	return []router.Route{
		{
			Path:    "/api/monthly-summary",
			Method:  http.MethodGet,
			Handler: GetMonthlySummary(reporter),
		},
		{
			Path:    "/api/top-products",
			Method:  http.MethodGet,
			Handler: GetTopProducts(reporter),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/api/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/api/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
