package domain

// Status — статус выполнения задачи, track или orchestrator.
//
// Используется в событиях логирования и в метаданных envelope.
type Status string

// Статусы выполнения.
const (
	// StatusStarted — выполнение началось.
	StatusStarted Status = "started"

	// StatusCompleted — выполнение завершилось успешно.
	StatusCompleted Status = "completed"

	// StatusFailed — выполнение завершилось с ошибкой.
	StatusFailed Status = "failed"
)

// IsTerminal возвращает true, если статус финальный.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
