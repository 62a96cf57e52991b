package tasks

import (
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/invoke"
)

// Register регистрирует все встроенные задачи в реестре.
func Register(r *invoke.Registry) {
	r.Register(TaskHTTPRequest, NewHTTPTask().Handle)
	r.Register(TaskDelay, NewDelayTask().Handle)
	r.Register(TaskTransform, NewTransformTask().Handle)
}
