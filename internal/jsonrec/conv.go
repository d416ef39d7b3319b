package jsonrec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Conv превращает одно «сырое» значение JSON (результат json.Unmarshal в any)
// в типизированное значение T.
type Conv[T any] func(raw any) (T, error)

// String принимает строки; числа и bool приводятся к строке.
func String(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", mismatch("string", raw)
}

// Int принимает целые числа и строки с десятичным целым.
func Int(raw any) (int, error) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 0); err == nil {
			return int(n), nil
		}
		if f, err := v.Float64(); err == nil && isIntegral(f) {
			return int(f), nil
		}
	case float64:
		if isIntegral(v) {
			return int(v), nil
		}
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, nil
		}
	}
	return 0, mismatch("int", raw)
}

func Float(raw any) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, mismatch("float", raw)
}

func Bool(raw any) (bool, error) {
	if v, ok := raw.(bool); ok {
		return v, nil
	}
	return false, mismatch("bool", raw)
}

// Enum — строковый литерал из фиксированного набора.
func Enum[E ~string](allowed ...E) Conv[E] {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = strconv.Quote(string(a))
	}
	expected := "one of " + strings.Join(names, "|")

	return func(raw any) (E, error) {
		if s, ok := raw.(string); ok {
			for _, a := range allowed {
				if string(a) == s {
					return a, nil
				}
			}
		}
		var zero E
		return zero, mismatch(expected, raw)
	}
}

// Nested гидрирует вложенный JSON-объект по другой схеме.
func Nested(s *Schema) Conv[Record] {
	return func(raw any) (Record, error) {
		obj, ok := raw.(map[string]any)
		if !ok {
			if r, isRec := raw.(Record); isRec {
				obj = r
			} else {
				return nil, mismatch(s.name+" object", raw)
			}
		}
		return s.Hydrate(obj)
	}
}

// float64(math.MaxInt64) округляется до 2^63, поэтому верхняя граница строгая.
func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && f >= -(1<<63) && f < 1<<63
}

// jsonKind — человекочитаемое имя JSON-типа для сообщений об ошибках.
func jsonKind(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any, Record:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
