package engine

import (
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
)

// Конструкторы envelope.
//
// Чистые функции без побочных эффектов: вся информация о запуске
// приходит параметрами. Каждый движок вызывает свой конструктор ровно
// из одной точки выхода, общей для успеха и ошибки, — это гарантирует,
// что форма envelope никогда не расходится между исходами.

// buildTrackEnvelope собирает envelope track-запуска.
//
// failure == "" означает успех. При ошибке результаты уже выполненных
// задач сохраняются, merged-значение "track" отсутствует (nil):
// финальный выход определён только для успешного запуска.
func buildTrackEnvelope(def *domain.TrackDefinition, runID string, in *domain.RunInput, seed map[string]any, results map[string]domain.TaskResult, final map[string]any, failure string) *domain.Envelope {
	return &domain.Envelope{
		Job: domain.Job{
			Success: failure == "",
			Name:    def.Name,
			RunID:   runID,
			Input:   seed,
			Error:   failure,
		},
		Results: map[string]any{
			domain.RunKindTrack: final,
			"tasks":             results,
		},
		Metadata:  buildMetadata(def.Name, domain.RunKindTrack, def.TaskIDs(), results),
		TrampData: in.Tramp(),
	}
}

// buildOrchestratorEnvelope собирает envelope orchestrator-запуска.
//
// merged — выходы успешных веток, ключованные идентификатором ветки;
// branchResults — результаты и метаданные всех завершившихся веток,
// включая упавшие. Результаты успешных соседей упавшей ветки
// сохраняются в failure envelope целиком, не только метаданные.
func buildOrchestratorEnvelope(def *domain.OrchestratorDefinition, runID string, in *domain.RunInput, merged map[string]any, branchResults map[string]domain.TaskResult, failure string) *domain.Envelope {
	return &domain.Envelope{
		Job: domain.Job{
			Success: failure == "",
			Name:    def.Name,
			RunID:   runID,
			Input:   in.Seed(),
			Error:   failure,
		},
		Results: map[string]any{
			domain.RunKindOrchestrator: merged,
			"tracks":                   branchResults,
		},
		Metadata:  buildMetadata(def.Name, domain.RunKindOrchestrator, def.BranchIDs(), branchResults),
		TrampData: in.Tramp(),
	}
}

// buildMetadata собирает RunMetadata из карты результатов.
//
// branches перечисляет все определённые задачи/ветки; в BranchMeta
// попадают только те, что успели выполниться до завершения запуска.
func buildMetadata(name, kind string, branches []string, results map[string]domain.TaskResult) domain.RunMetadata {
	branchMeta := make(map[string]domain.TaskMeta, len(results))
	for id, res := range results {
		branchMeta[id] = res.Metadata
	}

	return domain.RunMetadata{
		Name:        name,
		Kind:        kind,
		BranchCount: len(branches),
		Branches:    branches,
		BranchMeta:  branchMeta,
	}
}
