package domain

import "fmt"

// Branch — одна ветка orchestrator'а.
//
// Ветка — это либо одиночная задача, либо целый track; ровно одно из
// полей Task/Track должно быть заполнено. Каждая ветка имеет собственный
// input mapper и вычисляет свой вход независимо от соседних веток.
type Branch struct {
	// Task — задача-ветка. Взаимоисключимо с Track.
	Task *TaskRef

	// Track — track-ветка. Взаимоисключимо с Task.
	Track *TrackDefinition

	// InputMapper — опциональное преобразование входа ветки.
	InputMapper Mapper
}

// ID возвращает идентификатор ветки: ID задачи или имя track.
func (b *Branch) ID() string {
	switch {
	case b.Task != nil:
		return b.Task.ID
	case b.Track != nil:
		return b.Track.Name
	default:
		return ""
	}
}

// IsTrack возвращает true, если ветка — track.
func (b *Branch) IsTrack() bool {
	return b.Track != nil
}

// OrchestratorDefinition — группа независимых веток, выполняемых параллельно.
//
// Все ветки запускаются одновременно (fan-out) и engine ждёт завершения
// каждой (fan-in, полный join). Результаты ключуются идентификатором ветки,
// порядок завершения веток не гарантируется.
//
// Конструируется через NewOrchestrator при старте процесса и никогда
// не мутируется.
type OrchestratorDefinition struct {
	// Name — имя orchestrator'а.
	Name string

	// Branches — ветки. Идентификаторы веток уникальны.
	Branches []Branch

	// SecondaryLog включает вторичный durable-лог событий.
	SecondaryLog bool
}

// OrchestratorConfig — конфигурация для NewOrchestrator.
type OrchestratorConfig struct {
	// Name — имя orchestrator'а.
	Name string

	// Branches — ветки. Не может быть пустым.
	Branches []Branch

	// SecondaryLog включает вторичный durable-лог событий.
	SecondaryLog bool
}

// NewOrchestrator создаёт OrchestratorDefinition.
//
// Валидирует precondition'ы на этапе конструирования:
//   - непустое имя
//   - хотя бы одна ветка
//   - каждая ветка содержит ровно одно из: task или track
//   - уникальные идентификаторы веток (результаты ключуются по ID ветки)
func NewOrchestrator(cfg OrchestratorConfig) (*OrchestratorDefinition, error) {
	if cfg.Name == "" {
		return nil, ErrEmptyName
	}
	if len(cfg.Branches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBranches, cfg.Name)
	}

	seen := make(map[string]bool, len(cfg.Branches))
	for i := range cfg.Branches {
		branch := &cfg.Branches[i]

		if (branch.Task == nil) == (branch.Track == nil) {
			return nil, fmt.Errorf("%w: orchestrator %s", ErrBranchShape, cfg.Name)
		}

		id := branch.ID()
		if id == "" {
			return nil, fmt.Errorf("%w: orchestrator %s", ErrEmptyTaskID, cfg.Name)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s in orchestrator %s", ErrDuplicateBranch, id, cfg.Name)
		}
		seen[id] = true
	}

	branches := make([]Branch, len(cfg.Branches))
	copy(branches, cfg.Branches)

	return &OrchestratorDefinition{
		Name:         cfg.Name,
		Branches:     branches,
		SecondaryLog: cfg.SecondaryLog,
	}, nil
}

// BranchIDs возвращает идентификаторы веток в порядке определения.
func (d *OrchestratorDefinition) BranchIDs() []string {
	ids := make([]string, len(d.Branches))
	for i := range d.Branches {
		ids[i] = d.Branches[i].ID()
	}
	return ids
}
