package gateway

import (
	"context"
	"errors"
	"time"
)

var errConnectionLost = errors.New("connection lost")

func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.closed.Store(true)
		c.closeConn()
		c.failPendingCallbacks(errors.New("connection closed"))
		if c.OnDisconnected != nil {
			c.OnDisconnected()
		}
	}()

	// закрыть по отмене контекста
	go func() {
		<-ctx.Done()
		c.closeConn()
	}()

	for {
		conn := c.currentConn()
		var err error
		if conn == nil {
			err = errConnectionLost
		} else {
			var data []byte
			_, data, err = conn.ReadMessage()
			if err == nil {
				_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
				c.dispatch(data)
				continue
			}
		}

		if c.closed.Load() || ctx.Err() != nil {
			return
		}
		if c.OnError != nil {
			c.OnError(err)
		}

		// закрываем и фейлим ожидающие, сообщаем об обрыве
		c.closeConn()
		c.failPendingCallbacks(errConnectionLost)
		if c.OnDisconnected != nil {
			c.OnDisconnected()
		}

		if !c.reconnect(ctx) {
			return
		}
	}
}

// reconnect с экспоненциальным backoff 1s → 30s
func (c *Client) reconnect(ctx context.Context) bool {
	backoff := time.Second
	for !c.closed.Load() {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		conn, err := c.dialAndSetup()
		if err != nil {
			if c.OnError != nil {
				c.OnError(errors.Join(errors.New("reconnect failed"), err))
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		c.setConn(conn)
		if c.OnConnected != nil {
			c.OnConnected()
		}
		return true
	}
	return false
}

func (c *Client) dispatch(data []byte) {
	var f Frame
	if err := f.Unmarshal(data); err != nil {
		if c.OnError != nil {
			c.OnError(err)
		}
		return
	}
	c.touchActivity()

	// callbacks по seq
	if f.Kind == KindResult || f.Kind == KindError {
		c.mu.Lock()
		cb, ok := c.cbs[f.Seq]
		if ok {
			delete(c.cbs, f.Seq)
		}
		c.mu.Unlock()
		if ok && cb(&f) {
			return
		}
	}

	if f.Kind == KindMessage && c.OnMessage != nil {
		for _, m := range f.Messages {
			c.OnMessage(m)
		}
	}
}

// пометить все ожидающие callbacks ошибкой при обрыве/закрытии
func (c *Client) failPendingCallbacks(err error) {
	c.mu.Lock()
	pending := c.cbs
	c.cbs = make(map[uint32]func(*Frame) bool)
	c.mu.Unlock()

	for seq, cb := range pending {
		if cb != nil {
			cb(&Frame{Seq: seq, Kind: KindError, Error: err.Error()})
		}
	}
}
