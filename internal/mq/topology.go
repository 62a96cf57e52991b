package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeTasks Exchange = "sequence.tasks"
	ExchangeDLQ   Exchange = "sequence.dlq"
)

// Queues — имена очередей.
const (
	QueueTasksInvoke Queue = "tasks.invoke"
	QueueDLQTasks    Queue = "dlq.tasks"
)

// Routing keys.
const (
	RoutingKeyInvoke   RoutingKey = "invoke"
	RoutingKeyDLQTasks RoutingKey = "tasks"
)

// ReplyQueuePrefix — префикс эксклюзивных reply-очередей invoker'ов.
const ReplyQueuePrefix = "tasks.reply."

// SetupTopology декларирует обменники и очереди.
//
// Идемпотентна: безопасно вызывать при каждом старте сервиса.
// Reply-очереди сюда не входят — каждый invoker декларирует свою
// эксклюзивную очередь сам.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// Обменники
		for _, ex := range []Exchange{ExchangeTasks, ExchangeDLQ} {
			if err := ch.ExchangeDeclare(
				string(ex),
				"direct",
				true,  // durable
				false, // auto-delete
				false, // internal
				false, // no-wait
				nil,
			); err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		// DLQ очередь
		if _, err := ch.QueueDeclare(
			string(QueueDLQTasks),
			true, false, false, false,
			nil,
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueDLQTasks, err)
		}
		if err := ch.QueueBind(
			string(QueueDLQTasks), string(RoutingKeyDLQTasks), string(ExchangeDLQ),
			false, nil,
		); err != nil {
			return fmt.Errorf("bind queue %s: %w", QueueDLQTasks, err)
		}

		// Очередь вызовов задач с DLQ при отказе
		if _, err := ch.QueueDeclare(
			string(QueueTasksInvoke),
			true, false, false, false,
			amqp.Table{
				"x-dead-letter-exchange":    string(ExchangeDLQ),
				"x-dead-letter-routing-key": string(RoutingKeyDLQTasks),
			},
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueTasksInvoke, err)
		}
		if err := ch.QueueBind(
			string(QueueTasksInvoke), string(RoutingKeyInvoke), string(ExchangeTasks),
			false, nil,
		); err != nil {
			return fmt.Errorf("bind queue %s: %w", QueueTasksInvoke, err)
		}

		return nil
	})
}
