package gateway

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 30 * time.Second
	pingEvery    = 10 * time.Second
	maxBackoff   = 30 * time.Second
)

// ========================= low-level =========================

func (c *Client) nextSeq() uint32 {
	return atomic.AddUint32(&c.seq, 1)
}

// dial с установкой pong-handler'а и дедлайна чтения
func (c *Client) dialAndSetup() (*websocket.Conn, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	if c.guild != "" {
		header.Set("X-Guild", c.guild)
	}
	conn, _, err := websocket.DefaultDialer.Dial(c.url, header)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(16 << 20)

	// всегда обновляем отметку активности сразу
	c.touchActivity()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		c.touchActivity()
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	return conn, nil
}

// setConn делает conn текущим и запускает для него ping.
func (c *Client) setConn(conn *websocket.Conn) {
	stop := make(chan struct{})

	c.cmu.Lock()
	c.conn = conn
	c.pingStop = stop
	c.cmu.Unlock()

	go c.pingLoop(conn, stop)
}

func (c *Client) currentConn() *websocket.Conn {
	c.cmu.Lock()
	defer c.cmu.Unlock()
	return c.conn
}

// безопасно закрыть текущее соединение (повторный вызов ничего не делает)
func (c *Client) closeConn() {
	c.cmu.Lock()
	conn, stop := c.conn, c.pingStop
	c.conn, c.pingStop = nil, nil
	c.cmu.Unlock()

	if stop != nil {
		close(stop)
	}
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
			time.Now().Add(500*time.Millisecond))
		_ = conn.Close()
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	t := time.NewTicker(pingEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout))
		case <-stop:
			return
		}
	}
}

func (c *Client) touchActivity() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// Health — nil, если соединение есть и кадры или pong приходили не позже maxIdle назад.
func (c *Client) Health(maxIdle time.Duration) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if idle := c.SinceLastActivity(); idle > maxIdle {
		return fmt.Errorf("gateway: no activity for %s", idle.Round(time.Second))
	}
	return nil
}

// SinceLastActivity — сколько прошло с последнего принятого кадра или pong.
func (c *Client) SinceLastActivity() time.Duration {
	n := c.lastActivity.Load()
	if n == 0 {
		return time.Hour
	}
	return time.Since(time.Unix(0, n))
}
