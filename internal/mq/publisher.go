package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeTaskInvoke MessageType = "task.invoke"
	MessageTypeTaskResult MessageType = "task.result"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// TaskInvokePayload — payload вызова задачи.
// Потребитель: внешняя платформа выполнения.
type TaskInvokePayload struct {
	// InvocationID — корреляционный идентификатор вызова.
	InvocationID string `json:"invocationId"`

	// TaskID — идентификатор задачи в плоском пространстве имён платформы.
	TaskID string `json:"taskId"`

	// Input — входной payload задачи.
	Input map[string]any `json:"input,omitempty"`

	// ReplyTo — очередь, в которую платформа отправит результат.
	ReplyTo string `json:"replyTo"`
}

// TaskResultPayload — payload результата вызова задачи.
// Потребитель: AMQPInvoker, ожидающий на reply-очереди.
type TaskResultPayload struct {
	// InvocationID — корреляционный идентификатор вызова.
	InvocationID string `json:"invocationId"`

	// TaskID — идентификатор задачи.
	TaskID string `json:"taskId"`

	// Output — выходные данные при успехе.
	Output map[string]any `json:"output,omitempty"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`

	// Code — классификация ошибки при неудаче.
	Code string `json:"code,omitempty"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	return p.publish(ctx, string(exchange), string(routingKey), "", msg)
}

// publish сериализует и отправляет сообщение.
func (p *Publisher) publish(ctx context.Context, exchange, routingKey, correlationID string, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			exchange,
			routingKey,
			false,
			false,
			amqp.Publishing{
				ContentType:   "application/json",
				DeliveryMode:  amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:     msg.ID,
				CorrelationId: correlationID,
				Timestamp:     msg.Timestamp,
				Body:          body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishTaskInvoke публикует вызов задачи.
func (p *Publisher) PublishTaskInvoke(ctx context.Context, payload TaskInvokePayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeTaskInvoke,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, string(ExchangeTasks), string(RoutingKeyInvoke), payload.InvocationID, msg)
}

// PublishTaskResult публикует результат вызова в reply-очередь.
//
// Используется стороной платформы: replyTo приходит из TaskInvokePayload.
// Публикация идёт через default exchange — routing key равен имени очереди.
func (p *Publisher) PublishTaskResult(ctx context.Context, replyTo string, payload TaskResultPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeTaskResult,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, "", replyTo, payload.InvocationID, msg)
}
