package invoke

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/mq"
)

// Таймаут вызова по умолчанию, если у контекста нет дедлайна.
const defaultInvokeTimeout = 5 * time.Minute

// AMQPInvoker вызывает задачи на внешней платформе выполнения через
// RabbitMQ по схеме request/reply.
//
// Каждый вызов публикуется в обменник задач с уникальным invocationId;
// результат приходит в эксклюзивную reply-очередь invoker'а. Ожидающие
// вызовы сопоставляются с результатами по invocationId.
type AMQPInvoker struct {
	publisher *mq.Publisher
	consumer  *mq.Consumer
	logger    *slog.Logger
	replyTo   string

	mu      sync.Mutex
	pending map[string]chan mq.TaskResultPayload
}

// AMQPInvokerConfig — конфигурация AMQPInvoker.
type AMQPInvokerConfig struct {
	// Connection — соединение с RabbitMQ.
	Connection *mq.Connection

	// Logger — структурированный логгер.
	Logger *slog.Logger
}

// NewAMQPInvoker создаёт invoker и декларирует его reply-очередь.
func NewAMQPInvoker(cfg AMQPInvokerConfig) (*AMQPInvoker, error) {
	if cfg.Connection == nil {
		return nil, fmt.Errorf("connection is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	replyTo := mq.ReplyQueuePrefix + uuid.New().String()

	inv := &AMQPInvoker{
		publisher: mq.NewPublisher(cfg.Connection, logger),
		logger:    logger,
		replyTo:   replyTo,
		pending:   make(map[string]chan mq.TaskResultPayload),
	}

	if err := inv.declareReplyQueue(cfg.Connection); err != nil {
		return nil, err
	}

	inv.consumer = mq.NewConsumer(cfg.Connection, logger, mq.ConsumerConfig{
		Queue:     replyTo,
		Handler:   inv.handleReply,
		Prefetch:  10,
		Exclusive: true,
	})

	return inv, nil
}

// declareReplyQueue декларирует эксклюзивную reply-очередь invoker'а.
func (inv *AMQPInvoker) declareReplyQueue(conn *mq.Connection) error {
	return conn.WithChannel(context.Background(), func(ch *amqp.Channel) error {
		_, err := ch.QueueDeclare(
			inv.replyTo,
			false, // durable: reply-очередь живёт вместе с invoker'ом
			true,  // auto-delete
			true,  // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare reply queue %s: %w", inv.replyTo, err)
		}
		return nil
	})
}

// Start запускает потребление reply-очереди. Блокируется до отмены контекста.
func (inv *AMQPInvoker) Start(ctx context.Context) error {
	return inv.consumer.Start(ctx)
}

// Stop останавливает потребление.
func (inv *AMQPInvoker) Stop() {
	inv.consumer.Stop()
}

// Invoke публикует вызов задачи и блокируется до результата.
//
// Go error не возвращается: любая ошибка сворачивается в неуспешный
// TaskOutcome. Ошибки публикации и сериализации — PLATFORM_ERROR,
// истечение контекста — TASK_TIMEOUT.
func (inv *AMQPInvoker) Invoke(ctx context.Context, taskID string, input map[string]any) domain.TaskOutcome {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultInvokeTimeout)
		defer cancel()
	}

	invocationID := uuid.New().String()
	resultCh := inv.register(invocationID)
	defer inv.unregister(invocationID)

	err := inv.publisher.PublishTaskInvoke(ctx, mq.TaskInvokePayload{
		InvocationID: invocationID,
		TaskID:       taskID,
		Input:        input,
		ReplyTo:      inv.replyTo,
	})
	if err != nil {
		inv.logger.Error("failed to publish task invocation",
			"task", taskID,
			"invocation_id", invocationID,
			"error", err,
		)
		return domain.Failed(domain.ErrorCodePlatform,
			fmt.Sprintf("publish invocation for task %s: %v", taskID, err))
	}

	select {
	case <-ctx.Done():
		return domain.Failed(domain.ErrorCodeTaskTimeout,
			fmt.Sprintf("task %s timed out: %v", taskID, ctx.Err()))

	case result := <-resultCh:
		return foldResult(result)
	}
}

// register регистрирует ожидающий вызов.
func (inv *AMQPInvoker) register(invocationID string) chan mq.TaskResultPayload {
	ch := make(chan mq.TaskResultPayload, 1)
	inv.mu.Lock()
	inv.pending[invocationID] = ch
	inv.mu.Unlock()
	return ch
}

// unregister снимает вызов с ожидания.
func (inv *AMQPInvoker) unregister(invocationID string) {
	inv.mu.Lock()
	delete(inv.pending, invocationID)
	inv.mu.Unlock()
}

// handleReply обрабатывает сообщение из reply-очереди.
func (inv *AMQPInvoker) handleReply(_ context.Context, msg *mq.Delivery) error {
	if msg.Message.Type != mq.MessageTypeTaskResult {
		return fmt.Errorf("unexpected message type %s", msg.Message.Type)
	}

	payload, err := mq.ParsePayload[mq.TaskResultPayload](&msg.Message)
	if err != nil {
		return fmt.Errorf("parse task result: %w", err)
	}

	inv.mu.Lock()
	ch, ok := inv.pending[payload.InvocationID]
	inv.mu.Unlock()

	if !ok {
		// Вызов уже снят с ожидания (таймаут) — результат отбрасывается
		inv.logger.Warn("result for unknown invocation",
			"invocation_id", payload.InvocationID,
			"task", payload.TaskID,
		)
		return nil
	}

	select {
	case ch <- payload:
	default:
	}
	return nil
}

// foldResult сворачивает payload результата в TaskOutcome.
func foldResult(r mq.TaskResultPayload) domain.TaskOutcome {
	if r.Error == "" {
		return domain.Succeeded(r.Output)
	}

	code := domain.ErrorCode(r.Code)
	switch code {
	case domain.ErrorCodeTaskFailed, domain.ErrorCodeTaskNotFound,
		domain.ErrorCodeTaskTimeout, domain.ErrorCodePlatform:
	default:
		code = domain.ErrorCodeTaskFailed
	}
	return domain.Failed(code, r.Error)
}
