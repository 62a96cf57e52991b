// Package telemetry обеспечивает наблюдаемость оркестрационного ядра.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики запусков и вызовов задач
//
// Сервис использует единый формат логирования и экспортирует метрики
// на /metrics endpoint.
package telemetry
