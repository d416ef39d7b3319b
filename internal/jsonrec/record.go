package jsonrec

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Record — содержимое JSON-объекта после гидрации. Значения всегда
// JSON-представимы, поэтому сериализация — это прямой дамп.
type Record map[string]any

// Manual возвращает отсортированные ключи, которые схема не описывает
// (скопированные «как есть»).
func (r Record) Manual(s *Schema) []string {
	var keys []string
	for k := range r {
		if !s.Claims(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone — глубокая копия.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Marshal сериализует запись: ключи отсортированы, отступ 4 пробела,
// в конце перевод строки.
func Marshal(r Record) ([]byte, error) {
	if r == nil {
		r = Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
