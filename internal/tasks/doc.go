// Package tasks содержит встроенные обработчики задач для
// in-process платформы выполнения.
//
// Каждый обработчик читает свою конфигурацию из payload задачи —
// input mapper'ы tracks формируют этот payload из выхода предыдущего
// шага. Обработчики регистрируются в invoke.Registry через Register.
//
// Типы задач:
//   - http.request — HTTP запрос к внешнему API
//   - delay        — пауза между задачами
//   - transform    — трансформация данных через Go templates
package tasks
