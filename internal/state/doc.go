// Package state — доменные записи бота (GameEntry, GlobalState), операции над
// ними и файл сохранения.
//
// Записи — обычные структуры. Перевод в JSON и обратно идёт через схемы
// jsonrec (GameSchema, GlobalSchema): DecodeState/EncodeState. Неизвестные
// ключи документа живут в поле Extra и пишутся обратно без изменений.
//
// Жизненный цикл:
//   - NewStore(save, starter).Load() — читаем save, иначе starter, иначе
//     ErrMissingFile (фатально на старте);
//   - команды меняют GlobalState на месте (AddGame, RemoveGame, CastVote,
//     DisableGreeting, Pending.Keep ...);
//   - Store.Save(st) по команде save, при отключении и при выходе.
//
// Ошибки домена (*NotFoundError, *DuplicateEntryError, ErrNoGames ...)
// содержат текст, который можно сразу отправить в чат.
package state
