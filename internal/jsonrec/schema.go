package jsonrec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Schema — статическая таблица полей одного типа записи. Строится один раз
// (обычно в var-блоке пакета) и дальше только читается.
type Schema struct {
	name   string
	own    []Descriptor
	parent *Schema
	fields []Descriptor
	index  map[string]Descriptor
}

func NewSchema(name string, fields ...Descriptor) *Schema {
	s := &Schema{name: name, own: fields}
	s.build()
	return s
}

// Include подключает поля родительской схемы. Берутся только собственные
// поля parent: родитель родителя не учитывается. При совпадении ключей
// побеждает поле самой схемы.
func (s *Schema) Include(parent *Schema) *Schema {
	s.parent = parent
	s.build()
	return s
}

func (s *Schema) build() {
	s.index = make(map[string]Descriptor, len(s.own))
	s.fields = s.fields[:0]
	add := func(d Descriptor) {
		if _, dup := s.index[d.Key()]; dup {
			return
		}
		s.index[d.Key()] = d
		s.fields = append(s.fields, d)
	}
	for _, d := range s.own {
		add(d)
	}
	if s.parent != nil {
		for _, d := range s.parent.own {
			add(d)
		}
	}
}

func (s *Schema) Name() string { return s.name }

// Fields — итоговый набор полей: свои, затем родительские.
func (s *Schema) Fields() []Descriptor {
	out := make([]Descriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

// Claims сообщает, описан ли ключ схемой.
func (s *Schema) Claims(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Hydrate строит Record из декодированного JSON-объекта.
// Ключи схемы приводятся через дескрипторы, остальные копируются как есть.
// При ошибке приведения запись не возвращается. raw не изменяется.
func (s *Schema) Hydrate(raw map[string]any) (Record, error) {
	rec := make(Record, len(raw))
	if len(raw) == 0 {
		return rec, nil
	}

	claimed := make(map[string]struct{}, len(s.fields))
	for _, d := range s.fields {
		v, ok := raw[d.Key()]
		if !ok {
			continue
		}
		typed, err := d.decode(v)
		if err != nil {
			return nil, err
		}
		rec[d.Key()] = typed
		claimed[d.Key()] = struct{}{}
	}

	for k, v := range raw {
		if _, ok := claimed[k]; ok {
			continue
		}
		rec[k] = cloneValue(v)
	}
	return rec, nil
}

// HydrateJSON декодирует документ (числа — json.Number) и гидрирует его.
// Пустой документ и null дают пустую запись.
func (s *Schema) HydrateJSON(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.name, err)
	}
	if doc == nil {
		return Record{}, nil
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, mismatch(s.name+" object", doc)
	}
	return s.Hydrate(obj)
}
