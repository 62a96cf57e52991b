// Package invoke — адаптер вызова задач.
//
// Invoker — узкий контракт между оркестрационным ядром и платформой
// выполнения: вызвать задачу по строковому идентификатору и дождаться
// результата. Task-level ошибки, неизвестные задачи, таймауты и
// транспортные сбои никогда не поднимаются как Go error — все они
// сворачиваются в неуспешный TaskOutcome с кодом ошибки, чтобы
// вызывающая сторона реагировала единообразно.
//
// Реализации:
//   - Registry — in-process реестр обработчиков (локальная платформа)
//   - AMQPInvoker — удалённый вызов через RabbitMQ с correlated reply
//
// Retry на этом уровне нет: политика повторов принадлежит платформе
// выполнения и настраивается отдельно для каждой задачи.
package invoke
