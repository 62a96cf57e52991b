package tasks

import (
	"context"
	"fmt"
	"time"
)

const (
	// TaskDelay — идентификатор задачи задержки.
	TaskDelay = "delay"

	keyDurationSec = "duration_sec"
	keyDurationMs  = "duration_ms"
)

// DelayTask — обработчик задержки.
//
// Приостанавливает track на указанное время. Уважает отмену контекста.
//
// Payload:
//
//	{"duration_sec": 10}   // или
//	{"duration_ms": 5000}
//
// Output:
//
//	{"duration_ms": 10000}
type DelayTask struct{}

// NewDelayTask создаёт новый DelayTask.
func NewDelayTask() *DelayTask {
	return &DelayTask{}
}

// Handle выполняет задержку.
func (t *DelayTask) Handle(ctx context.Context, input map[string]any) (map[string]any, error) {
	duration, err := t.parseDuration(input)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return map[string]any{
			"duration_ms": duration.Milliseconds(),
		}, nil
	}
}

// parseDuration извлекает длительность из payload.
func (t *DelayTask) parseDuration(input map[string]any) (time.Duration, error) {
	if sec := GetInt(input, keyDurationSec); sec > 0 {
		return time.Duration(sec) * time.Second, nil
	}

	if ms := GetInt(input, keyDurationMs); ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}

	return 0, fmt.Errorf("%w: %s: duration_sec or duration_ms required",
		ErrInvalidInput, TaskDelay)
}
