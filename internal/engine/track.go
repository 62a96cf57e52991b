package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/runlog"
)

// RunTrack выполняет track: задачи строго последовательно, выход каждой
// становится входом следующей.
//
// Go error возвращается только при нарушении precondition'ов (nil
// определение, невалидный вход) — до вызова какой-либо задачи. Любая
// ошибка выполнения (задача, mapper, платформа) даёт failure envelope
// и nil error.
//
// Идентификаторы запуска (tenantId/projectId/userId) повторно
// вставляются в выход каждой задачи: задача, не возвращающая их
// обратно, не разрывает цепочку.
func (r *Runner) RunTrack(ctx context.Context, def *domain.TrackDefinition, in *domain.RunInput) (*domain.Envelope, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if err := r.checkPreconditions(in); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	seed := in.Seed()
	original := domain.CopyMap(seed)

	results := make(map[string]domain.TaskResult, len(def.Tasks))

	r.events.Emit(ctx, event(runID, in, runlog.ScopeTrack, def.Name, domain.StatusStarted,
		"track started", map[string]any{"tasks": len(def.Tasks)}), def.SecondaryLog)

	// Первая задача получает копию seed: обработчик, мутирующий свой
	// вход, не должен менять записанный в envelope исходный вход.
	current := domain.CopyMap(seed)
	for _, ref := range def.Tasks {
		outcome, meta := r.invokeTask(ctx, runID, ref, current, original)

		if !outcome.OK() {
			// Первая ошибка терминальна: оставшиеся задачи не вызываются,
			// уже накопленные результаты сохраняются в failure envelope.
			results[ref.ID] = domain.TaskResult{Metadata: meta}

			r.events.Emit(ctx, event(runID, in, runlog.ScopeTask, ref.ID, domain.StatusFailed,
				"task failed", map[string]any{
					"track": def.Name,
					"error": outcome.Failure.Message,
					"code":  string(outcome.Failure.Code),
				}), def.SecondaryLog)

			failure := fmt.Sprintf("Task %s failed: %s", ref.ID, outcome.Failure.Message)
			return r.finishTrack(ctx, def, runID, in, seed, results, nil, failure), nil
		}

		results[ref.ID] = domain.TaskResult{Results: outcome.Output, Metadata: meta}

		r.events.Emit(ctx, event(runID, in, runlog.ScopeTask, ref.ID, domain.StatusCompleted,
			"task completed", map[string]any{"track": def.Name}), def.SecondaryLog)

		current = domain.MergeMaps(outcome.Output, in.Identity())
	}

	return r.finishTrack(ctx, def, runID, in, seed, results, current, ""), nil
}

// finishTrack — единая точка выхода track-запуска.
//
// Вызывается ровно из двух мест (успех и ошибка), чтобы форма envelope
// не могла разойтись между исходами.
func (r *Runner) finishTrack(ctx context.Context, def *domain.TrackDefinition, runID string, in *domain.RunInput, seed map[string]any, results map[string]domain.TaskResult, final map[string]any, failure string) *domain.Envelope {
	status := domain.StatusCompleted
	message := "track completed"
	attrs := map[string]any{"tasks_completed": len(results)}
	if failure != "" {
		status = domain.StatusFailed
		message = "track failed"
		attrs["error"] = failure
	}

	r.events.Emit(ctx, event(runID, in, runlog.ScopeTrack, def.Name, status, message, attrs),
		def.SecondaryLog)

	if r.metrics != nil {
		r.metrics.ObserveTrackRun(def.Name, string(status))
	}

	return buildTrackEnvelope(def, runID, in, seed, results, final, failure)
}
