package domain

import "errors"

// Ошибки валидации определений и входных данных.
//
// Все эти ошибки — precondition violations: они возвращаются из конструкторов
// определений или из RunInput.Validate до вызова какой-либо задачи.
var (
	// ErrEmptyName — определение без имени.
	ErrEmptyName = errors.New("definition name is empty")

	// ErrEmptyTrack — track без задач.
	ErrEmptyTrack = errors.New("track has no tasks")

	// ErrEmptyTaskID — TaskRef с пустым идентификатором.
	ErrEmptyTaskID = errors.New("task identifier is empty")

	// ErrDuplicateTask — повторяющийся идентификатор задачи внутри track.
	ErrDuplicateTask = errors.New("duplicate task identifier in track")

	// ErrNoBranches — orchestrator без веток.
	ErrNoBranches = errors.New("orchestrator has no branches")

	// ErrBranchShape — ветка должна содержать ровно одно из: task или track.
	ErrBranchShape = errors.New("branch must hold exactly one of task or track")

	// ErrDuplicateBranch — повторяющийся идентификатор ветки внутри orchestrator.
	ErrDuplicateBranch = errors.New("duplicate branch identifier in orchestrator")

	// ErrMissingTenant — не указан tenantId.
	ErrMissingTenant = errors.New("tenantId is required")

	// ErrMissingProject — не указан projectId.
	ErrMissingProject = errors.New("projectId is required")
)
