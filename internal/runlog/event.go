package runlog

import (
	"context"
	"time"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
)

// Scope — уровень события: задача, track или orchestrator.
type Scope string

// Уровни событий.
const (
	ScopeTask         Scope = "task"
	ScopeTrack        Scope = "track"
	ScopeOrchestrator Scope = "orchestrator"
)

// Event — одно событие выполнения.
//
// Каждое событие несёт идентификатор запуска и идентификаторы
// tenant/project/user для корреляции с вызывающей стороной.
type Event struct {
	// RunID — идентификатор запуска-владельца.
	RunID string `json:"runId"`

	// Scope — уровень события.
	Scope Scope `json:"scope"`

	// Name — имя задачи/track/orchestrator'а.
	Name string `json:"name"`

	// Status — started, completed или failed.
	Status domain.Status `json:"status"`

	// Message — человекочитаемое сообщение.
	Message string `json:"message"`

	// Идентификаторы запуска.
	TenantID  string `json:"tenantId"`
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId,omitempty"`

	// Attrs — произвольные атрибуты события.
	Attrs map[string]any `json:"attrs,omitempty"`

	// At — время события.
	At time.Time `json:"at"`
}

// Sink — durable-приёмник событий (вторичный уровень).
type Sink interface {
	// Write записывает событие. Ошибка записи не влияет на запуск:
	// Logger подавляет её и понижает до warning.
	Write(ctx context.Context, e Event) error
}
