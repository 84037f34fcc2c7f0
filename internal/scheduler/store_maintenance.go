package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/internal/config"
)

var ErrMaintenanceRunning = errors.New("manutenção do banco já em andamento")

// StoreMaintenanceConfig representa a configuração do agendador de manutenção do banco
type StoreMaintenanceConfig struct {
	CronSchedule string
	Enabled      bool
}

// StoreMaintenanceService atualiza as estatísticas da tabela de vendas para o planner
// continuar usando os índices conforme a tabela cresce
type StoreMaintenanceService struct {
	scheduler        *gocron.Scheduler
	config           StoreMaintenanceConfig
	provider         database.SessionProvider
	runMutex         sync.Mutex
	running          bool
	lastStartedAt    time.Time
	lastCompletedAt  time.Time
	lastError        string
	lastRunDuration  time.Duration
	manualRunTimeout time.Duration
}

func NewStoreMaintenanceService(provider database.SessionProvider, appConfig *config.Config) *StoreMaintenanceService {
	maintenanceConfig := StoreMaintenanceConfig{
		CronSchedule: appConfig.StoreMaintenance.CronSchedule,
		Enabled:      appConfig.StoreMaintenance.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": maintenanceConfig.CronSchedule,
		"enabled":       maintenanceConfig.Enabled,
	}).Info("Configuração do agendador de manutenção do banco carregada")

	return &StoreMaintenanceService{
		scheduler:        gocron.NewScheduler(time.Local),
		config:           maintenanceConfig,
		provider:         provider,
		manualRunTimeout: 10 * time.Minute,
	}
}

// Start agenda a manutenção; o agendador para quando ctx for cancelado
func (s *StoreMaintenanceService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Manutenção do banco desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de manutenção do banco")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if err := s.Run(ctx); err != nil && !errors.Is(err, ErrMaintenanceRunning) {
			logrus.WithError(err).Error("Erro na manutenção agendada do banco")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar manutenção do banco: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de manutenção do banco")
		s.scheduler.Stop()
	}()

	return nil
}

// Run executa ANALYZE na tabela de vendas; retorna ErrMaintenanceRunning se já houver uma execução
func (s *StoreMaintenanceService) Run(ctx context.Context) error {
	startTime, ok := s.claim()
	if !ok {
		logrus.Info("Manutenção do banco já em andamento, ignorando")
		return ErrMaintenanceRunning
	}

	return s.execute(ctx, startTime)
}

// TriggerManualSync inicia a manutenção em segundo plano; retorna false se já estiver em andamento
func (s *StoreMaintenanceService) TriggerManualSync() bool {
	startTime, ok := s.claim()
	if !ok {
		logrus.Info("Manutenção do banco já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando manutenção manual do banco")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.manualRunTimeout)
		defer cancel()

		if err := s.execute(ctx, startTime); err != nil {
			logrus.WithError(err).Error("Erro na manutenção manual do banco")
		}
	}()

	return true
}

// claim marca a execução como iniciada; falso se outra já estiver rodando
func (s *StoreMaintenanceService) claim() (time.Time, bool) {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.running {
		return time.Time{}, false
	}

	s.running = true
	s.lastStartedAt = time.Now()
	return s.lastStartedAt, true
}

func (s *StoreMaintenanceService) execute(ctx context.Context, startTime time.Time) error {
	logrus.Info("Iniciando manutenção do banco")

	err := s.provider.WithSession(ctx, func(sess database.Session) error {
		_, err := sess.Exec(ctx, "ANALYZE "+database.SalesTable)
		return err
	})

	s.runMutex.Lock()
	s.running = false
	s.lastRunDuration = time.Since(startTime)
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
		s.lastCompletedAt = time.Now()
	}
	duration := s.lastRunDuration
	s.runMutex.Unlock()

	if err != nil {
		return fmt.Errorf("erro ao executar ANALYZE: %w", err)
	}

	logrus.WithField("duration", duration.String()).Info("Manutenção do banco concluída")
	return nil
}

// GetStatus retorna o status atual da manutenção
func (s *StoreMaintenanceService) GetStatus() map[string]any {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return map[string]any{
		"running":           s.running,
		"cron":              s.config.CronSchedule,
		"enabled":           s.config.Enabled,
		"last_started_at":   s.lastStartedAt,
		"last_completed_at": s.lastCompletedAt,
		"last_duration":     s.lastRunDuration.String(),
		"last_error":        s.lastError,
	}
}
