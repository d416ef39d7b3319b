package jsonrec

import "fmt"

// Shape — форма значения поля: скаляр, список или словарь.
type Shape int

const (
	ShapeBasic Shape = iota
	ShapeList
	ShapeDict
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeDict:
		return "dict"
	default:
		return "basic"
	}
}

// Descriptor — запись схемы: JSON-ключ и способ привести сырое значение к типу.
// Реализуется только *Field[T].
type Descriptor interface {
	Key() string
	Shape() Shape
	decode(raw any) (any, error)
}

// Field описывает одно именованное поле записи. Кроме приведения типа даёт
// типизированный доступ (Get/Set/Delete) к значению в Record.
type Field[T any] struct {
	key   string
	shape Shape
	init  func(raw any) (T, error)
}

// Basic — поле, значение которого приводится conv напрямую.
func Basic[T any](key string, conv Conv[T]) *Field[T] {
	return &Field[T]{key: key, shape: ShapeBasic, init: conv}
}

// List — JSON-массив, conv применяется к каждому элементу, порядок сохраняется.
func List[T any](key string, conv Conv[T]) *Field[[]T] {
	return &Field[[]T]{key: key, shape: ShapeList, init: func(raw any) ([]T, error) {
		items, ok := raw.([]any)
		if !ok {
			return nil, mismatch("list", raw)
		}
		out := make([]T, 0, len(items))
		for i, item := range items {
			v, err := conv(item)
			if err != nil {
				return nil, under(fmt.Sprintf("[%d]", i), err)
			}
			out = append(out, v)
		}
		return out, nil
	}}
}

// Dict — JSON-объект, conv применяется к каждому значению, ключи не меняются.
func Dict[T any](key string, conv Conv[T]) *Field[map[string]T] {
	return &Field[map[string]T]{key: key, shape: ShapeDict, init: func(raw any) (map[string]T, error) {
		obj, ok := raw.(map[string]any)
		if !ok {
			if r, isRec := raw.(Record); isRec {
				obj = r
			} else {
				return nil, mismatch("dict", raw)
			}
		}
		out := make(map[string]T, len(obj))
		for k, item := range obj {
			v, err := conv(item)
			if err != nil {
				return nil, under(k, err)
			}
			out[k] = v
		}
		return out, nil
	}}
}

func (f *Field[T]) Key() string  { return f.key }
func (f *Field[T]) Shape() Shape { return f.shape }

func (f *Field[T]) decode(raw any) (any, error) {
	v, err := f.init(raw)
	if err != nil {
		return nil, under(f.key, err)
	}
	return v, nil
}

// Get возвращает значение поля; false — ключа нет или он хранит чужой тип.
func (f *Field[T]) Get(r Record) (T, bool) {
	v, ok := r[f.key].(T)
	return v, ok
}

// GetOr — Get со значением по умолчанию.
func (f *Field[T]) GetOr(r Record, def T) T {
	if v, ok := f.Get(r); ok {
		return v
	}
	return def
}

func (f *Field[T]) Set(r Record, v T) {
	r[f.key] = v
}

func (f *Field[T]) Delete(r Record) {
	delete(r, f.key)
}
