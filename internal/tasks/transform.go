package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
)

const (
	// TaskTransform — идентификатор задачи трансформации.
	TaskTransform = "transform"

	keyMappings = "mappings"
)

// TransformTask — обработчик трансформации данных.
//
// Рендерит Go templates над payload задачи: каждый mapping получает
// весь input как контекст шаблона.
//
// Payload:
//
//	{
//	    "mappings": {
//	        "total": "{{ len .items }}",
//	        "greeting": "hello {{ .name }}"
//	    },
//	    "items": [...],
//	    "name": "world"
//	}
//
// Output — результат рендеринга каждого mapping:
//
//	{"total": 3, "greeting": "hello world"}
type TransformTask struct{}

// NewTransformTask создаёт новый TransformTask.
func NewTransformTask() *TransformTask {
	return &TransformTask{}
}

// Handle выполняет трансформацию.
func (t *TransformTask) Handle(ctx context.Context, input map[string]any) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	mappings := t.parseMappings(input)
	if len(mappings) == 0 {
		return map[string]any{}, nil
	}

	outputs := make(map[string]any, len(mappings))
	for key, tmpl := range mappings {
		rendered, err := render(tmpl, input)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", key, err)
		}
		outputs[key] = parseValue(rendered)
	}

	return outputs, nil
}

// parseMappings извлекает mappings из payload.
func (t *TransformTask) parseMappings(input map[string]any) map[string]string {
	raw := input[keyMappings]
	if raw == nil {
		return nil
	}

	switch m := raw.(type) {
	case map[string]string:
		return m

	case map[string]any:
		result := make(map[string]string, len(m))
		for key, val := range m {
			if str, ok := val.(string); ok {
				result[key] = str
			}
		}
		return result

	default:
		return nil
	}
}

// render рендерит один шаблон над payload.
func render(tmpl string, data map[string]any) (string, error) {
	t, err := template.New("mapping").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// parseValue пытается распарсить строку как JSON.
// Если не получается — возвращает строку как есть.
func parseValue(value string) any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err == nil {
		return obj
	}

	var arr []any
	if err := json.Unmarshal([]byte(value), &arr); err == nil {
		return arr
	}

	var num json.Number
	if err := json.Unmarshal([]byte(value), &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return i
		}
		if f, err := num.Float64(); err == nil {
			return f
		}
	}

	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}

	return value
}
