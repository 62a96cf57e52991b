package domain

import "fmt"

// Mapper — функция преобразования входа следующей задачи.
//
// prev — выход предыдущего шага (для первого шага — seed-payload запуска),
// original — исходный входной payload запуска. Mapper обязан быть чистой
// функцией; ошибка маппера обрабатывается движком так же, как ошибка задачи.
type Mapper func(prev, original map[string]any) (map[string]any, error)

// TaskRef — ссылка на вызываемую единицу работы.
//
// ID — непрозрачный строковый идентификатор, уникальный в пределах
// платформы выполнения. Определяется один раз при конструировании
// track/orchestrator и не мутируется.
type TaskRef struct {
	// ID — идентификатор задачи на платформе выполнения.
	ID string

	// InputMapper — опциональное преобразование входа задачи.
	// Если nil, задача получает выход предыдущего шага без изменений.
	InputMapper Mapper
}

// TrackDefinition — упорядоченный конвейер задач.
//
// Задачи выполняются строго последовательно: выход каждой задачи
// (после маппинга) становится входом следующей. Первая ошибка
// завершает track.
//
// Конструируется через NewTrack при старте процесса, никогда не
// мутируется и переиспользуется между запусками.
type TrackDefinition struct {
	// Name — имя track. Уникально в пределах процесса (для корреляции логов).
	Name string

	// Tasks — упорядоченный список задач.
	Tasks []TaskRef

	// SecondaryLog включает вторичный durable-лог событий этого track.
	SecondaryLog bool
}

// TrackConfig — конфигурация для NewTrack.
type TrackConfig struct {
	// Name — имя track.
	Name string

	// Tasks — упорядоченный список задач. Не может быть пустым.
	Tasks []TaskRef

	// SecondaryLog включает вторичный durable-лог событий.
	SecondaryLog bool
}

// NewTrack создаёт TrackDefinition.
//
// Валидирует precondition'ы на этапе конструирования:
//   - непустое имя
//   - непустой список задач (поведение пустого track не определено контрактом)
//   - непустые и уникальные идентификаторы задач (результаты ключуются по ID)
func NewTrack(cfg TrackConfig) (*TrackDefinition, error) {
	if cfg.Name == "" {
		return nil, ErrEmptyName
	}
	if len(cfg.Tasks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTrack, cfg.Name)
	}

	seen := make(map[string]bool, len(cfg.Tasks))
	for _, task := range cfg.Tasks {
		if task.ID == "" {
			return nil, fmt.Errorf("%w: track %s", ErrEmptyTaskID, cfg.Name)
		}
		if seen[task.ID] {
			return nil, fmt.Errorf("%w: %s in track %s", ErrDuplicateTask, task.ID, cfg.Name)
		}
		seen[task.ID] = true
	}

	tasks := make([]TaskRef, len(cfg.Tasks))
	copy(tasks, cfg.Tasks)

	return &TrackDefinition{
		Name:         cfg.Name,
		Tasks:        tasks,
		SecondaryLog: cfg.SecondaryLog,
	}, nil
}

// TaskIDs возвращает идентификаторы задач в порядке выполнения.
func (d *TrackDefinition) TaskIDs() []string {
	ids := make([]string, len(d.Tasks))
	for i, task := range d.Tasks {
		ids[i] = task.ID
	}
	return ids
}
