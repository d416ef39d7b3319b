// Package jsonrec — декларативное отображение JSON-документа на типизированные
// записи.
//
// Схема (Schema) — статическая таблица дескрипторов полей (Field). Каждый
// дескриптор связывает JSON-ключ с конвертером одной из трёх форм:
//
//   - Basic(key, conv) — значение приводится напрямую;
//   - List(key, conv)  — массив, conv к каждому элементу, порядок сохраняется;
//   - Dict(key, conv)  — объект, conv к каждому значению, ключи как есть.
//
// Гидрация (Schema.Hydrate) приводит описанные ключи и копирует все прочие
// без изменений, так что неизвестные поля переживают цикл load/save.
// Ошибка приведения (*TypeMismatchError) прерывает гидрацию целиком.
//
// Схема может подключить поля одной родительской схемы (Include) — ровно
// один уровень, без обхода цепочки.
//
// Пример:
//
//	var (
//		name  = jsonrec.Basic("name", jsonrec.String)
//		flags = jsonrec.List("flags", jsonrec.String)
//		game  = jsonrec.NewSchema("game", name, flags)
//	)
//
//	rec, err := game.HydrateJSON([]byte(`{"name":"Chess","flags":["a"],"x":1}`))
//	if err != nil { ... }
//	n, _ := name.Get(rec)         // "Chess"
//	out, _ := jsonrec.Marshal(rec) // "x" сохранён
package jsonrec
