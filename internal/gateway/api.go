package gateway

import (
	"context"
	"time"
)

// ========================= high-level API =========================

// SendMessage отправляет текст в канал, ответа не ждёт.
func (c *Client) SendMessage(channel, text string) error {
	return c.Send(&Frame{Kind: KindSend, Channel: channel, Content: text}, nil)
}

// History возвращает сообщения канала новее after (нулевое — без ограничения),
// не больше limit, от новых к старым.
func (c *Client) History(ctx context.Context, channel string, after time.Time, limit int) ([]Message, error) {
	resp, err := c.Request(ctx, &Frame{
		Kind:    KindHistory,
		Channel: channel,
		After:   after,
		Limit:   uint32(max(limit, 0)),
	})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) DeleteMessage(ctx context.Context, channel, messageID string) error {
	_, err := c.Request(ctx, &Frame{Kind: KindDelete, Channel: channel, MessageID: messageID})
	return err
}
