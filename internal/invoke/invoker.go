package invoke

import (
	"context"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
)

// Invoker — контракт вызова задачи на платформе выполнения.
type Invoker interface {
	// Invoke вызывает задачу taskID с входом input и блокируется до её
	// завершения. Никогда не возвращает Go error: любая ошибка
	// (task-level, платформенная, таймаут) сворачивается в неуспешный
	// TaskOutcome с соответствующим кодом.
	Invoke(ctx context.Context, taskID string, input map[string]any) domain.TaskOutcome
}

// Func — адаптер функции к интерфейсу Invoker.
type Func func(ctx context.Context, taskID string, input map[string]any) domain.TaskOutcome

// Invoke вызывает функцию.
func (f Func) Invoke(ctx context.Context, taskID string, input map[string]any) domain.TaskOutcome {
	return f(ctx, taskID, input)
}
