package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/runlog"
)

// Разделитель частей агрегированной ошибки orchestrator'а.
const branchErrorSeparator = "; "

// branchOutcome — результат одной ветки orchestrator'а.
type branchOutcome struct {
	id      string
	result  domain.TaskResult
	failure *domain.Failure
}

// RunOrchestrator выполняет orchestrator: все ветки запускаются
// одновременно, движок ждёт завершения каждой (полный join).
//
// Упавшая ветка не отменяет соседние: их результаты нужны для
// диагностики. Если упала хотя бы одна ветка, запуск целиком
// неуспешен, а итоговая ошибка — конкатенация ошибок всех упавших
// веток. Результаты успешных веток при этом сохраняются в envelope.
//
// Go error возвращается только при нарушении precondition'ов.
func (r *Runner) RunOrchestrator(ctx context.Context, def *domain.OrchestratorDefinition, in *domain.RunInput) (*domain.Envelope, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if err := r.checkPreconditions(in); err != nil {
		return nil, err
	}

	runID := uuid.New().String()

	r.events.Emit(ctx, event(runID, in, runlog.ScopeOrchestrator, def.Name, domain.StatusStarted,
		"orchestrator started", map[string]any{"branches": len(def.Branches)}), def.SecondaryLog)

	// Fan-out: все ветки стартуют до того, как хоть одна будет await'иться.
	// Каждая ветка пишет в свой слот среза — общего мутируемого состояния нет.
	outcomes := make([]branchOutcome, len(def.Branches))
	var wg sync.WaitGroup
	for i := range def.Branches {
		wg.Add(1)
		go func(slot int, branch *domain.Branch) {
			defer wg.Done()
			outcomes[slot] = r.runBranch(ctx, runID, def, branch, in)
		}(i, &def.Branches[i])
	}
	wg.Wait()

	// Fan-in: разделяем успехи и неудачи, порядок — порядок определения.
	merged := make(map[string]any)
	branchResults := make(map[string]domain.TaskResult, len(outcomes))
	var failures []string
	for _, out := range outcomes {
		branchResults[out.id] = out.result
		if out.failure != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", out.id, out.failure.Message))
			continue
		}
		merged[out.id] = out.result.Results
	}

	failure := strings.Join(failures, branchErrorSeparator)
	return r.finishOrchestrator(ctx, def, runID, in, merged, branchResults, failure), nil
}

// runBranch выполняет одну ветку: одиночную задачу или вложенный track.
//
// Ветка получает собственную глубокую копию seed-входа: mapper одной
// ветки не может увидеть мутации соседней. Mapper ветки применяется
// до вызова задачи; его ошибка фейлит ветку (MAPPER_FAILED).
func (r *Runner) runBranch(ctx context.Context, runID string, def *domain.OrchestratorDefinition, branch *domain.Branch, in *domain.RunInput) branchOutcome {
	if branch.IsTrack() {
		return r.runTrackBranch(ctx, runID, branch, in)
	}

	seed := in.Seed()
	original := domain.CopyMap(seed)

	startedAt := time.Now()
	payload, err := applyMapper(branch.InputMapper, seed, original)
	if err != nil {
		r.events.Emit(ctx, event(runID, in, runlog.ScopeTask, branch.Task.ID, domain.StatusFailed,
			"branch failed", map[string]any{
				"orchestrator": def.Name,
				"error":        err.Error(),
			}), def.SecondaryLog)
		return branchOutcome{
			id: branch.Task.ID,
			result: domain.TaskResult{Metadata: domain.TaskMeta{
				Status:       domain.StatusFailed,
				RunID:        runID,
				InvocationID: uuid.New().String(),
				StartedAt:    startedAt,
				FinishedAt:   time.Now(),
				Error:        err.Error(),
			}},
			failure: &domain.Failure{Message: err.Error(), Code: domain.ErrorCodeMapperFailed},
		}
	}

	outcome, meta := r.invokeTask(ctx, runID, *branch.Task, payload, original)
	if !outcome.OK() {
		r.events.Emit(ctx, event(runID, in, runlog.ScopeTask, branch.Task.ID, domain.StatusFailed,
			"branch failed", map[string]any{
				"orchestrator": def.Name,
				"error":        outcome.Failure.Message,
			}), def.SecondaryLog)
		return branchOutcome{
			id:      branch.Task.ID,
			result:  domain.TaskResult{Metadata: meta},
			failure: outcome.Failure,
		}
	}

	r.events.Emit(ctx, event(runID, in, runlog.ScopeTask, branch.Task.ID, domain.StatusCompleted,
		"branch completed", map[string]any{"orchestrator": def.Name}), def.SecondaryLog)

	return branchOutcome{
		id:     branch.Task.ID,
		result: domain.TaskResult{Results: outcome.Output, Metadata: meta},
	}
}

// runTrackBranch выполняет track-ветку как вложенный track-запуск.
func (r *Runner) runTrackBranch(ctx context.Context, runID string, branch *domain.Branch, in *domain.RunInput) branchOutcome {
	startedAt := time.Now()

	payload, err := applyMapper(branch.InputMapper, in.Seed(), domain.CopyMap(in.Seed()))
	if err != nil {
		return branchOutcome{
			id: branch.Track.Name,
			result: domain.TaskResult{Metadata: domain.TaskMeta{
				Status:       domain.StatusFailed,
				RunID:        runID,
				InvocationID: uuid.New().String(),
				StartedAt:    startedAt,
				FinishedAt:   time.Now(),
				Error:        err.Error(),
			}},
			failure: &domain.Failure{Message: err.Error(), Code: domain.ErrorCodeMapperFailed},
		}
	}

	sub := &domain.RunInput{
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		UserID:    in.UserID,
		TrampData: in.Tramp(),
		Payload:   payload,
	}

	// Precondition'ы уже проверены на входе orchestrator'а, так что
	// сюда ошибка из RunTrack не доходит; страховка на всякий случай.
	env, err := r.RunTrack(ctx, branch.Track, sub)
	if err != nil {
		return branchOutcome{
			id:      branch.Track.Name,
			failure: &domain.Failure{Message: err.Error(), Code: domain.ErrorCodePlatform},
		}
	}

	finishedAt := time.Now()
	meta := domain.TaskMeta{
		Status:       domain.StatusCompleted,
		RunID:        runID,
		InvocationID: env.Job.RunID,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
		DurationMs:   finishedAt.Sub(startedAt).Milliseconds(),
	}

	if !env.Job.Success {
		meta.Status = domain.StatusFailed
		meta.Error = env.Job.Error
		return branchOutcome{
			id:      branch.Track.Name,
			result:  domain.TaskResult{Metadata: meta},
			failure: &domain.Failure{Message: env.Job.Error, Code: domain.ErrorCodeTaskFailed},
		}
	}

	final, _ := env.Results[domain.RunKindTrack].(map[string]any)
	return branchOutcome{
		id:     branch.Track.Name,
		result: domain.TaskResult{Results: final, Metadata: meta},
	}
}

// finishOrchestrator — единая точка выхода orchestrator-запуска.
//
// Как и в track, вызывается для обоих исходов, поэтому success и
// failure envelope всегда совпадают по форме.
func (r *Runner) finishOrchestrator(ctx context.Context, def *domain.OrchestratorDefinition, runID string, in *domain.RunInput, merged map[string]any, branchResults map[string]domain.TaskResult, failure string) *domain.Envelope {
	status := domain.StatusCompleted
	message := "orchestrator completed"
	attrs := map[string]any{"branches": len(def.Branches)}
	if failure != "" {
		status = domain.StatusFailed
		message = "orchestrator failed"
		attrs["error"] = failure
	}

	r.events.Emit(ctx, event(runID, in, runlog.ScopeOrchestrator, def.Name, status, message, attrs),
		def.SecondaryLog)

	if r.metrics != nil {
		r.metrics.ObserveOrchestratorRun(def.Name, string(status))
	}

	return buildOrchestratorEnvelope(def, runID, in, merged, branchResults, failure)
}
