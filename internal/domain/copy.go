package domain

// CopyMap делает глубокую копию map[string]any.
//
// Копируются вложенные map[string]any и []any; скалярные значения
// (строки, числа, bool) переносятся как есть. Используется для изоляции
// tramp data и входов параллельных веток: маппер одной ветки не должен
// видеть мутации соседней.
func CopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

// copyValue копирует одно значение рекурсивно.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return val
	}
}

// MergeMaps объединяет maps слева направо: более поздние значения
// перекрывают более ранние. Исходные maps не мутируются.
func MergeMaps(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
