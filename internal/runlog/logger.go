package runlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
)

// Таймаут записи во вторичный sink: событие либо записывается быстро,
// либо теряется с warning. Движок запусков не ждёт.
const defaultSinkTimeout = 5 * time.Second

// Logger — эмиттер событий выполнения.
//
// Первичный уровень (slog) пишется всегда и синхронно.
// Вторичный sink пишется fire-and-forget в отдельной горутине
// с собственным bounded-контекстом.
type Logger struct {
	logger      *slog.Logger
	secondary   Sink
	sinkTimeout time.Duration

	wg sync.WaitGroup
}

// Config — конфигурация Logger.
type Config struct {
	// Logger — первичный slog-логгер. Если nil — slog.Default().
	Logger *slog.Logger

	// Secondary — durable-sink событий. Опционален.
	Secondary Sink

	// SinkTimeout — таймаут одной записи во вторичный sink (default: 5s).
	SinkTimeout time.Duration
}

// New создаёт Logger.
func New(cfg Config) *Logger {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sinkTimeout := cfg.SinkTimeout
	if sinkTimeout <= 0 {
		sinkTimeout = defaultSinkTimeout
	}

	return &Logger{
		logger:      logger,
		secondary:   cfg.Secondary,
		sinkTimeout: sinkTimeout,
	}
}

// Emit публикует событие.
//
// durable=true дополнительно отправляет событие во вторичный sink
// (если он настроен). Ошибки вторичного уровня не возвращаются:
// они понижаются до warning на первичном уровне.
func (l *Logger) Emit(ctx context.Context, e Event, durable bool) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	l.emitPrimary(e)

	if durable && l.secondary != nil {
		l.wg.Add(1)
		go l.writeSecondary(e)
	}
}

// emitPrimary пишет событие в первичный slog-уровень.
func (l *Logger) emitPrimary(e Event) {
	attrs := []any{
		"run_id", e.RunID,
		"scope", string(e.Scope),
		"name", e.Name,
		"status", string(e.Status),
		"tenant_id", e.TenantID,
		"project_id", e.ProjectID,
	}
	if e.UserID != "" {
		attrs = append(attrs, "user_id", e.UserID)
	}
	for k, v := range e.Attrs {
		attrs = append(attrs, k, v)
	}

	if e.Status == domain.StatusFailed {
		l.logger.Error(e.Message, attrs...)
		return
	}
	l.logger.Info(e.Message, attrs...)
}

// writeSecondary пишет событие во вторичный sink с изоляцией ошибок.
//
// Вызывается в отдельной горутине. Паника sink'а перехватывается,
// ошибка записи понижается до warning — запуск этого не видит.
func (l *Logger) writeSecondary(e Event) {
	defer l.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("secondary log sink panicked",
				"run_id", e.RunID,
				"panic", r,
			)
		}
	}()

	// Собственный контекст: запись не привязана к времени жизни запуска.
	ctx, cancel := context.WithTimeout(context.Background(), l.sinkTimeout)
	defer cancel()

	if err := l.secondary.Write(ctx, e); err != nil {
		l.logger.Warn("secondary log sink failed",
			"run_id", e.RunID,
			"scope", string(e.Scope),
			"name", e.Name,
			"error", err,
		)
	}
}

// Flush дожидается завершения всех отложенных записей во вторичный sink.
// Используется при graceful shutdown и в тестах.
func (l *Logger) Flush() {
	l.wg.Wait()
}
