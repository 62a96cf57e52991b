package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/engine"
)

// Таймаут одного запланированного запуска.
const defaultRunTimeout = 10 * time.Minute

// cronParser — парсер cron-выражений.
// Descriptor разрешает формы @every, @hourly и т.п.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Scheduler запускает tracks и orchestrators по расписанию.
type Scheduler struct {
	runner     *engine.Runner
	logger     *slog.Logger
	cron       *cron.Cron
	runTimeout time.Duration
}

// Config — конфигурация Scheduler.
type Config struct {
	// Runner — движок выполнения.
	Runner *engine.Runner

	// Logger — структурированный логгер.
	Logger *slog.Logger

	// RunTimeout — таймаут одного запуска (default: 10m).
	RunTimeout time.Duration
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runTimeout := cfg.RunTimeout
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}

	return &Scheduler{
		runner:     cfg.Runner,
		logger:     logger,
		cron:       cron.New(cron.WithParser(cronParser)),
		runTimeout: runTimeout,
	}
}

// AddTrack регистрирует периодический запуск track.
//
// На каждый тик запуск получает глубокую копию input.
func (s *Scheduler) AddTrack(expr string, def *domain.TrackDefinition, input *domain.RunInput) error {
	if def == nil {
		return fmt.Errorf("track definition is required")
	}
	if input == nil {
		return fmt.Errorf("run input is required")
	}

	_, err := s.cron.AddFunc(expr, func() {
		s.runTrack(def, input)
	})
	if err != nil {
		return fmt.Errorf("add track schedule %q: %w", expr, err)
	}

	s.logger.Info("track scheduled", "track", def.Name, "cron", expr)
	return nil
}

// AddOrchestrator регистрирует периодический запуск orchestrator.
func (s *Scheduler) AddOrchestrator(expr string, def *domain.OrchestratorDefinition, input *domain.RunInput) error {
	if def == nil {
		return fmt.Errorf("orchestrator definition is required")
	}
	if input == nil {
		return fmt.Errorf("run input is required")
	}

	_, err := s.cron.AddFunc(expr, func() {
		s.runOrchestrator(def, input)
	})
	if err != nil {
		return fmt.Errorf("add orchestrator schedule %q: %w", expr, err)
	}

	s.logger.Info("orchestrator scheduled", "orchestrator", def.Name, "cron", expr)
	return nil
}

// Start запускает планировщик в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
}

// Stop останавливает планировщик и дожидается запущенных тиков.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// runTrack выполняет один тик track-записи.
func (s *Scheduler) runTrack(def *domain.TrackDefinition, input *domain.RunInput) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	env, err := s.runner.RunTrack(ctx, def, cloneInput(input))
	if err != nil {
		s.logger.Error("scheduled track run rejected", "track", def.Name, "error", err)
		return
	}

	s.logger.Info("scheduled track run finished",
		"track", def.Name,
		"run_id", env.Job.RunID,
		"success", env.Job.Success,
	)
}

// runOrchestrator выполняет один тик orchestrator-записи.
func (s *Scheduler) runOrchestrator(def *domain.OrchestratorDefinition, input *domain.RunInput) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	env, err := s.runner.RunOrchestrator(ctx, def, cloneInput(input))
	if err != nil {
		s.logger.Error("scheduled orchestrator run rejected", "orchestrator", def.Name, "error", err)
		return
	}

	s.logger.Info("scheduled orchestrator run finished",
		"orchestrator", def.Name,
		"run_id", env.Job.RunID,
		"success", env.Job.Success,
	)
}

// cloneInput возвращает глубокую копию входа для одного тика.
func cloneInput(in *domain.RunInput) *domain.RunInput {
	return &domain.RunInput{
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		UserID:    in.UserID,
		TrampData: domain.CopyMap(in.TrampData),
		Payload:   domain.CopyMap(in.Payload),
	}
}
