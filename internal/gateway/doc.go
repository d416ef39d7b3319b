// Package gateway реализует WebSocket-клиент внешнего чат-шлюза. Шлюз
// скрывает конкретную платформу: бот видит только каналы, сообщения и
// историю.
//
// Кадры (Frame) кодируются в protobuf wire format (protowire), бинарными
// WebSocket-сообщениями. Запросы получают seq; ответ KindResult/KindError с
// тем же seq уходит в колбэк запроса. Входящие KindMessage отдаются в
// OnMessage.
//
// События (колбэки поля структуры):
//   - OnConnecting, OnConnected, OnMessage, OnDisconnected, OnError.
//
// Устойчивость:
//   - Запись в сокет сериализована (мьютекс + write-deadline).
//   - ping/pong и read-deadline; при обрыве — OnDisconnected, сброс
//     ожидающих колбэков с ошибкой и реконнект с экспоненциальным backoff.
//
// Пример:
//
//	gw := gateway.New(gateway.Config{URL: "ws://127.0.0.1:8765/gateway", Token: token})
//	gw.OnMessage = func(m gateway.Message) { fmt.Println(m.Channel, m.Content) }
//	if err := gw.Connect(ctx); err != nil { log.Fatal(err) }
//	defer gw.Disconnect()
//
//	_ = gw.SendMessage("general", "hello")
//	msgs, err := gw.History(ctx, "games", time.Time{}, 100)
//
// OnMessage вызывается из горутины чтения: внутри него нельзя синхронно
// ждать ответа шлюза (History/DeleteMessage), иначе чтение встанет.
package gateway
