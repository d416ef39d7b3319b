package bot

import (
	"context"
	"strings"
	"time"
)

var farewellPhrases = []string{"hey bot, take a nap", "no more bot"}

func isFarewell(text string) bool {
	text = strings.ToLower(text)
	for _, p := range farewellPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// greet здоровается в канале, если бот не писал туда с локальной полуночи.
// Результат проверки кэшируется на канал до конца дня.
func (b *GamePickerBot) greet(ctx context.Context, channel string) {
	if channel == "" {
		return
	}
	now := b.opts.Now().In(b.opts.Location)
	today := now.Format(time.DateOnly)

	b.mu.Lock()
	enabled := b.state.GreetingEnabled(channel)
	checked := b.greeted[channel] == today
	b.mu.Unlock()
	if !enabled || checked {
		return
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.opts.Location)
	hctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	msgs, err := b.chat.History(hctx, channel, midnight, b.opts.HistoryLimit)
	if err != nil {
		// не кэшируем: попробуем на следующем сообщении
		b.log.Warn("greeting: history failed", "channel", channel, "error", err)
		return
	}

	b.mu.Lock()
	b.greeted[channel] = today
	text, ok := b.state.Greeting(b.rnd)
	b.mu.Unlock()

	for _, m := range msgs {
		if b.isOwn(m) {
			return
		}
	}
	if ok {
		b.say(channel, text)
	}
}

// farewell прощается, сохраняет состояние и просит процесс завершиться.
func (b *GamePickerBot) farewell(channel string) {
	b.mu.Lock()
	text, ok := b.state.Farewell(b.rnd)
	b.mu.Unlock()
	if ok {
		b.say(channel, text)
	}
	_ = b.save(triggerFarewell)
	b.log.Info("asked to leave", "channel", channel)
	b.requestShutdown()
}
