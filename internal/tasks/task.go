package tasks

import "errors"

// Ошибки обработчиков задач.
var (
	// ErrInvalidInput — невалидный payload задачи.
	ErrInvalidInput = errors.New("invalid task input")
)

// GetString извлекает строковое значение из payload.
func GetString(input map[string]any, key string) string {
	if v, ok := input[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt извлекает числовое значение из payload.
func GetInt(input map[string]any, key string) int {
	if v, ok := input[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

// GetBool извлекает булево значение из payload.
func GetBool(input map[string]any, key string, defaultVal bool) bool {
	if v, ok := input[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetMapString извлекает map[string]string из payload.
func GetMapString(input map[string]any, key string) map[string]string {
	if v, ok := input[key]; ok {
		switch m := v.(type) {
		case map[string]string:
			return m
		case map[string]any:
			result := make(map[string]string)
			for k, val := range m {
				if s, ok := val.(string); ok {
					result[k] = s
				}
			}
			return result
		}
	}
	return nil
}
