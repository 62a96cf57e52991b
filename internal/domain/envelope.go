package domain

import "time"

// Виды запусков в metadata envelope.
const (
	// RunKindTrack — запуск track.
	RunKindTrack = "track"

	// RunKindOrchestrator — запуск orchestrator.
	RunKindOrchestrator = "orchestrator"
)

// Job — итог запуска в envelope.
//
// Success и Error — единственные поля, которые вызывающая сторона
// обязана проверять. Error присутствует тогда и только тогда,
// когда Success == false.
type Job struct {
	// Success — true, если все задачи/ветки завершились успешно.
	Success bool `json:"success"`

	// Name — имя определения (track или orchestrator).
	Name string `json:"name"`

	// RunID — уникальный идентификатор запуска.
	RunID string `json:"runId"`

	// Input — исходный входной payload запуска (с идентификаторами).
	Input map[string]any `json:"input,omitempty"`

	// Error — цепочка сообщений об ошибках. Пусто при успехе.
	Error string `json:"error,omitempty"`
}

// TaskMeta — метаданные одного вызова задачи или ветки.
type TaskMeta struct {
	// Status — финальный статус: completed или failed.
	Status Status `json:"status"`

	// RunID — идентификатор родительского запуска.
	RunID string `json:"runId"`

	// InvocationID — идентификатор конкретного вызова.
	InvocationID string `json:"invocationId"`

	// StartedAt — время начала вызова.
	StartedAt time.Time `json:"startedAt"`

	// FinishedAt — время завершения вызова.
	FinishedAt time.Time `json:"finishedAt"`

	// DurationMs — продолжительность в миллисекундах.
	DurationMs int64 `json:"durationMs"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`
}

// TaskResult — результат одной задачи или ветки в envelope.
type TaskResult struct {
	// Results — выходные данные.
	Results map[string]any `json:"results"`

	// Metadata — метаданные вызова.
	Metadata TaskMeta `json:"metadata"`
}

// RunMetadata — метаданные запуска в envelope.
//
// Присутствует всегда, в том числе в failure envelope: Branches перечисляет
// все определённые ветки/задачи, BranchMeta — метаданные тех, что успели
// выполниться.
type RunMetadata struct {
	// Name — имя определения.
	Name string `json:"name"`

	// Kind — вид запуска: track или orchestrator.
	Kind string `json:"kind"`

	// BranchCount — количество задач (track) или веток (orchestrator).
	BranchCount int `json:"branchCount"`

	// Branches — идентификаторы задач/веток в порядке определения.
	Branches []string `json:"branches"`

	// BranchMeta — метаданные по каждой выполненной задаче/ветке.
	BranchMeta map[string]TaskMeta `json:"branchMetadata"`
}

// Envelope — внешний результат запуска track или orchestrator.
//
// Конструируется ровно один раз на запуск и не мутируется после возврата.
// Форма success и failure envelope идентична на верхнем уровне:
// одни и те же ключи, Job.Error заполнен только при неудаче.
type Envelope struct {
	// Job — итог запуска.
	Job Job `json:"job"`

	// Results — результаты: merged-значение плюс per-task/per-branch map.
	// Для track: {"track": finalOutput, "tasks": {taskID: TaskResult}}.
	// Для orchestrator: {"orchestrator": {branchID: output}, "tracks": {branchID: TaskResult}}.
	Results map[string]any `json:"results"`

	// Metadata — метаданные запуска. Присутствуют и при неудаче.
	Metadata RunMetadata `json:"metadata"`

	// TrampData — сквозные данные вызывающей стороны, байт-в-байт
	// из RunInput. Присутствуют и в success, и в failure envelope.
	TrampData map[string]any `json:"trampData,omitempty"`
}
