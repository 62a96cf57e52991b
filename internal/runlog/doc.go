// Package runlog — двухуровневое логирование событий выполнения.
//
// Первый уровень — обязательный: структурные события через slog.
// Он никогда не влияет на исход запуска.
//
// Второй уровень — опциональный durable-sink (например, таблица run_events
// в Postgres), включаемый флагом SecondaryLog на определении track или
// orchestrator. Ошибки и паники вторичного уровня подавляются и понижаются
// до warning на первичном уровне: они не могут ни провалить запуск,
// ни заблокировать движок.
package runlog
