package invoke

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
)

// Handler — обработчик одной задачи.
//
// Возвращает выходные данные или ошибку. Ошибка сворачивается реестром
// в неуспешный TaskOutcome — наружу она не поднимается.
type Handler func(ctx context.Context, input map[string]any) (map[string]any, error)

// Registry — in-process платформа выполнения: реестр обработчиков
// задач по строковому идентификатору.
//
// Потокобезопасен. Идентификаторы — плоское строковое пространство имён,
// связь определения с реализацией остаётся свободной: track ссылается
// на задачу по ID, не зная о её обработчике.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register регистрирует обработчик задачи.
// Повторная регистрация перезаписывает предыдущий обработчик.
func (r *Registry) Register(taskID string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[taskID] = handler
}

// Has проверяет, зарегистрирована ли задача.
func (r *Registry) Has(taskID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.handlers[taskID]
	return exists
}

// TaskIDs возвращает отсортированный список зарегистрированных задач.
func (r *Registry) TaskIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Invoke выполняет задачу синхронно в вызывающей горутине.
//
// Сворачивает в неуспешный TaskOutcome:
//   - незарегистрированную задачу (TASK_NOT_FOUND)
//   - ошибку обработчика (TASK_FAILED)
//   - панику обработчика (TASK_FAILED)
//   - отменённый контекст (TASK_TIMEOUT)
func (r *Registry) Invoke(ctx context.Context, taskID string, input map[string]any) (outcome domain.TaskOutcome) {
	r.mu.RLock()
	handler, exists := r.handlers[taskID]
	r.mu.RUnlock()

	if !exists {
		return domain.Failed(domain.ErrorCodeTaskNotFound,
			fmt.Sprintf("task %s is not registered", taskID))
	}

	if err := ctx.Err(); err != nil {
		return domain.Failed(domain.ErrorCodeTaskTimeout,
			fmt.Sprintf("task %s not started: %v", taskID, err))
	}

	// Паника обработчика не должна ронять движок
	defer func() {
		if rec := recover(); rec != nil {
			outcome = domain.Failed(domain.ErrorCodeTaskFailed,
				fmt.Sprintf("task %s panicked: %v", taskID, rec))
		}
	}()

	output, err := handler(ctx, input)
	if err != nil {
		return domain.Failed(domain.ErrorCodeTaskFailed, err.Error())
	}

	return domain.Succeeded(output)
}
