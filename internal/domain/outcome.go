package domain

// ErrorCode — классификация ошибки вызова задачи.
type ErrorCode string

// Коды ошибок.
const (
	// ErrorCodeTaskFailed — задача сама сообщила об ошибке.
	ErrorCodeTaskFailed ErrorCode = "TASK_FAILED"

	// ErrorCodeTaskNotFound — задача с таким идентификатором не зарегистрирована
	// на платформе выполнения.
	ErrorCodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"

	// ErrorCodeTaskTimeout — платформа не ответила в отведённое время.
	ErrorCodeTaskTimeout ErrorCode = "TASK_TIMEOUT"

	// ErrorCodeMapperFailed — input mapper вернул ошибку или запаниковал.
	ErrorCodeMapperFailed ErrorCode = "MAPPER_FAILED"

	// ErrorCodePlatform — инфраструктурная ошибка платформы выполнения
	// (транспорт, сериализация и т.п.).
	ErrorCodePlatform ErrorCode = "PLATFORM_ERROR"
)

// Failure — описание ошибки вызова задачи.
type Failure struct {
	// Message — человекочитаемое сообщение об ошибке.
	Message string `json:"message"`

	// Code — классификация ошибки.
	Code ErrorCode `json:"code,omitempty"`
}

// TaskOutcome — результат одного вызова задачи.
//
// Ровно одно из двух: успех с Output или неудача с Failure.
// Адаптер вызова задач никогда не возвращает Go error для task-level
// ошибок — они всегда сворачиваются в TaskOutcome с заполненным Failure.
type TaskOutcome struct {
	// Output — выходные данные задачи при успехе.
	Output map[string]any `json:"output,omitempty"`

	// Failure — описание ошибки при неудаче. Nil при успехе.
	Failure *Failure `json:"failure,omitempty"`
}

// OK возвращает true, если вызов завершился успешно.
func (o TaskOutcome) OK() bool {
	return o.Failure == nil
}

// Succeeded создаёт успешный TaskOutcome.
func Succeeded(output map[string]any) TaskOutcome {
	if output == nil {
		output = make(map[string]any)
	}
	return TaskOutcome{Output: output}
}

// Failed создаёт неуспешный TaskOutcome.
func Failed(code ErrorCode, message string) TaskOutcome {
	return TaskOutcome{Failure: &Failure{Message: message, Code: code}}
}
