// Package engine — ядро выполнения track и orchestrator запусков.
//
// Track Engine выполняет задачи строго последовательно: выход каждой
// задачи (через опциональный input mapper) становится входом следующей,
// первая ошибка завершает track (fail-fast).
//
// Orchestrator Engine запускает все ветки одновременно и ждёт завершения
// каждой (fail-after-join): упавшая ветка не отменяет соседние, потому что
// для диагностики нужны результаты всех веток. Итоговая ошибка —
// конкатенация ошибок всех упавших веток.
//
// Оба движка всегда возвращают корректно сформированный Envelope:
// вызывающая сторона не получает "сырых" ошибок выполнения, Go error
// возвращается только при нарушении precondition'ов (nil определение,
// невалидный RunInput).
package engine
