// Package domain содержит основные типы оркестрационного слоя.
//
// Здесь определены:
//   - TaskRef, TrackDefinition, OrchestratorDefinition — статические определения
//   - RunInput — входные данные одного запуска (tenant/project/user + payload)
//   - TaskOutcome — результат вызова задачи (успех или ошибка с кодом)
//   - Envelope — единый формат ответа для track и orchestrator запусков
//
// Определения конструируются один раз при старте процесса и переиспользуются
// между запусками. Все precondition-проверки (пустой track, дубликаты веток)
// выполняются на этапе конструирования, а не во время запуска.
package domain
