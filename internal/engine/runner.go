package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/invoke"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/runlog"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/telemetry"
)

// Runner выполняет track и orchestrator запуски.
//
// Runner — stateless: всё состояние одного запуска живёт в локальных
// переменных RunTrack/RunOrchestrator, поэтому одно определение можно
// запускать параллельно из разных горутин без взаимного влияния.
type Runner struct {
	invoker invoke.Invoker
	events  *runlog.Logger
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// Config — конфигурация Runner.
type Config struct {
	// Invoker — адаптер вызова задач. Обязателен.
	Invoker invoke.Invoker

	// Events — эмиттер событий выполнения.
	// Если nil, создаётся Logger только с первичным slog-уровнем.
	Events *runlog.Logger

	// Metrics — Prometheus-метрики ядра. Опциональны.
	Metrics *telemetry.Metrics

	// Logger — slog-логгер. Если nil — slog.Default().
	Logger *slog.Logger
}

// New создаёт Runner.
func New(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	events := cfg.Events
	if events == nil {
		events = runlog.New(runlog.Config{Logger: logger})
	}

	return &Runner{
		invoker: cfg.Invoker,
		events:  events,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// checkPreconditions валидирует общие precondition'ы запуска.
func (r *Runner) checkPreconditions(in *domain.RunInput) error {
	if r.invoker == nil {
		return ErrNoInvoker
	}
	if in == nil {
		return ErrNilInput
	}
	return in.Validate()
}

// invokeTask вызывает одну задачу и собирает её метаданные.
//
// Mapper применяется до вызова; его ошибка или паника обрабатывается
// как ошибка задачи (MAPPER_FAILED), движок при этом не падает.
func (r *Runner) invokeTask(ctx context.Context, runID string, ref domain.TaskRef, prev, original map[string]any) (domain.TaskOutcome, domain.TaskMeta) {
	startedAt := time.Now()
	invocationID := uuid.New().String()

	outcome := r.mapAndInvoke(ctx, ref, prev, original)

	finishedAt := time.Now()
	meta := domain.TaskMeta{
		Status:       domain.StatusCompleted,
		RunID:        runID,
		InvocationID: invocationID,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
		DurationMs:   finishedAt.Sub(startedAt).Milliseconds(),
	}
	if !outcome.OK() {
		meta.Status = domain.StatusFailed
		meta.Error = outcome.Failure.Message
	}

	if r.metrics != nil {
		r.metrics.ObserveTask(ref.ID, string(meta.Status), finishedAt.Sub(startedAt))
	}

	return outcome, meta
}

// mapAndInvoke применяет input mapper и вызывает задачу.
func (r *Runner) mapAndInvoke(ctx context.Context, ref domain.TaskRef, prev, original map[string]any) domain.TaskOutcome {
	input, err := applyMapper(ref.InputMapper, prev, original)
	if err != nil {
		return domain.Failed(domain.ErrorCodeMapperFailed, err.Error())
	}
	return r.invoker.Invoke(ctx, ref.ID, input)
}

// applyMapper применяет mapper с защитой от паники.
func applyMapper(m domain.Mapper, prev, original map[string]any) (out map[string]any, err error) {
	if m == nil {
		return prev, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("input mapper panicked: %v", rec)
		}
	}()

	out, err = m(prev, original)
	if err != nil {
		return nil, fmt.Errorf("input mapper: %w", err)
	}
	return out, nil
}

// event строит событие выполнения с полями корреляции запуска.
func event(runID string, in *domain.RunInput, scope runlog.Scope, name string, status domain.Status, message string, attrs map[string]any) runlog.Event {
	return runlog.Event{
		RunID:     runID,
		Scope:     scope,
		Name:      name,
		Status:    status,
		Message:   message,
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		UserID:    in.UserID,
		Attrs:     attrs,
	}
}
