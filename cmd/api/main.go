package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/api"
	"github.com/vfg2006/sales-analytics-api/internal/api/handler"
	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/internal/ingestion"
	"github.com/vfg2006/sales-analytics-api/internal/metrics"
	"github.com/vfg2006/sales-analytics-api/internal/scheduler"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/ingesting"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := openStore(ctx, cfg.Database)
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("Erro ao fechar o banco de vendas")
		}
	}()

	if err := metrics.RegisterOpenSessions(store.OpenSessions); err != nil {
		logrus.WithError(err).Warn("Não foi possível registrar a métrica de sessões abertas")
	}

	salesRepo := repository.NewSalesRepository(store.Dialect())

	ingestor := ingestion.NewIngestor(store, salesRepo, cfg.Ingest.BatchSize)
	uploader := ingesting.NewService(ingestor)
	reporter := reporting.NewService(store, salesRepo)

	storeMaintenanceService := scheduler.NewStoreMaintenanceService(store, cfg)
	if err := storeMaintenanceService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de manutenção do banco")
	} else {
		logrus.Info("Agendador de manutenção do banco iniciado com sucesso")
	}

	server := api.New(cfg, api.Dependencies{
		DB:       store,
		Uploader: uploader,
		Reporter: reporter,
		CronJobs: handler.CronJobServices{
			StoreMaintenance: storeMaintenanceService,
		},
	})

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// openStore abre o banco e garante a tabela de vendas antes de aceitar requisições
func openStore(ctx context.Context, dbConfig config.Database) *database.Store {
	store, err := database.Open(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao banco de vendas")
	}

	if err := store.Initialize(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar o schema de vendas")
	}

	logrus.WithField("driver", store.Dialect().Name).Info("Banco de vendas pronto")
	return store
}
