// Package repo содержит слой доступа к PostgreSQL.
//
// Здесь живёт durable-приёмник событий выполнения: вторичный уровень
// логирования пишет события в таблицу run_events для последующего
// аудита и отладки запусков.
package repo
