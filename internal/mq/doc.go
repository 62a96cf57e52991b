// Package mq — транспорт RabbitMQ для удалённого вызова задач.
//
// Оркестрационное ядро отправляет вызов задачи в очередь tasks.invoke
// и ждёт результата на собственной reply-очереди (correlated
// request/reply). Потребитель очереди вызовов — внешняя платформа
// выполнения; её worker-механика вне зоны ответственности этого репо.
//
// Включает:
//   - connection.go — соединение с автоматическим reconnect
//   - topology.go — обменники и очереди
//   - publisher.go — публикация вызовов и результатов
//   - consumer.go — потребление очередей (reply-очереди invoker'а)
package mq
