package domain

// Ключи идентификаторов RunInput в payload задач.
//
// Эти поля всегда повторно вставляются в input каждой следующей задачи,
// чтобы задача, не возвращающая их обратно, не разрывала цепочку.
const (
	KeyTenantID  = "tenantId"
	KeyProjectID = "projectId"
	KeyUserID    = "userId"
)

// RunInput — входные данные одного запуска track или orchestrator.
//
// Создаётся заново на каждый запуск и никогда не разделяется между
// параллельными запусками. TrampData — непрозрачный сквозной контейнер:
// ядро его не интерпретирует и возвращает байт-в-байт в envelope
// независимо от исхода запуска.
type RunInput struct {
	// TenantID — идентификатор тенанта. Обязателен.
	TenantID string `json:"tenantId"`

	// ProjectID — идентификатор проекта. Обязателен.
	ProjectID string `json:"projectId"`

	// UserID — идентификатор пользователя. Опционален.
	UserID string `json:"userId,omitempty"`

	// TrampData — сквозные данные вызывающей стороны.
	// Возвращаются в envelope без изменений и в успехе, и в ошибке.
	TrampData map[string]any `json:"trampData,omitempty"`

	// Payload — полезная нагрузка первого шага.
	Payload map[string]any `json:"payload,omitempty"`
}

// Validate проверяет обязательные поля.
//
// Вызывается до запуска какой-либо ветки: отсутствующий tenant/project —
// это precondition violation, а не runtime-ошибка запуска.
func (in *RunInput) Validate() error {
	if in.TenantID == "" {
		return ErrMissingTenant
	}
	if in.ProjectID == "" {
		return ErrMissingProject
	}
	return nil
}

// Identity возвращает map с идентификаторами запуска.
func (in *RunInput) Identity() map[string]any {
	m := map[string]any{
		KeyTenantID:  in.TenantID,
		KeyProjectID: in.ProjectID,
	}
	if in.UserID != "" {
		m[KeyUserID] = in.UserID
	}
	return m
}

// Seed строит независимый входной payload первого шага:
// глубокая копия Payload плюс идентификаторы запуска.
func (in *RunInput) Seed() map[string]any {
	return MergeMaps(CopyMap(in.Payload), in.Identity())
}

// Tramp возвращает глубокую копию tramp data.
//
// Копия гарантирует, что задачи и мапперы не смогут мутировать данные,
// которые должны вернуться вызывающей стороне без изменений.
func (in *RunInput) Tramp() map[string]any {
	return CopyMap(in.TrampData)
}
