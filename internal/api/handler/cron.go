package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const CronJobTypeStoreMaintenance = "store-maintenance"

// CronJob é implementado pelos serviços do pacote scheduler
type CronJob interface {
	TriggerManualSync() bool
	GetStatus() map[string]any
}

// CronJobServices contém os serviços de cron que podem ser executados manualmente
type CronJobServices struct {
	StoreMaintenance CronJob
}

func (s CronJobServices) byType() map[string]CronJob {
	jobs := map[string]CronJob{}
	if s.StoreMaintenance != nil {
		jobs[CronJobTypeStoreMaintenance] = s.StoreMaintenance
	}
	return jobs
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		job, ok := services.byType()[cronType]
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: "+CronJobTypeStoreMaintenance, nil)
			return
		}

		log.ForContext(r.Context()).WithField("ingest_cron_type", cronType).Info("Execução manual de cron job solicitada")

		message := "Cron job iniciada com sucesso"
		if !job.TriggerManualSync() {
			message = "Cron job já em andamento"
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"message": message,
			"type":    cronType,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		for cronType, job := range services.byType() {
			status[cronType] = job.GetStatus()
		}

		writeJSON(w, r, http.StatusOK, status)
	}
}
