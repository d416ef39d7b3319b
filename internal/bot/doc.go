// Package bot — «склейка» вокруг gateway и state, реализующая чат-бота,
// который ведёт список игр компании и предлагает, во что поиграть. Бот:
//   - обрабатывает команды (help, boop, games, add, remove, vote, load-from,
//     keep/discard, greet, save, poof) с настраиваемым префиксом;
//   - раз в день здоровается в каналах, где ещё не писал с полуночи;
//   - на «hey bot, take a nap» / «no more bot» прощается, сохраняется
//     и просит процесс завершиться (см. Done);
//   - сохраняет состояние после каждой изменяющей команды, по таймеру,
//     при дисконнекте шлюза и при остановке.
//
// Сообщения из шлюза обрабатываются одним воркером: колбэк OnMessage
// только кладёт их в очередь, потому что History/DeleteMessage ждут
// ответа из того же readLoop.
//
// Жизненный цикл:
//
//	gw := gateway.New(gateway.Config{URL: url, Token: token})
//	b := bot.New(gw, store, st, bot.Options{Name: "game-picker", Prefix: "!"})
//	b.Bind(gw)
//
//	if err := b.Start(ctx); err != nil { log.Fatal(err) }
//	defer b.Stop()
//	if err := gw.Connect(ctx); err != nil { log.Fatal(err) }
//
//	select {
//	case <-ctx.Done():
//	case <-b.Done():
//	}
package bot
