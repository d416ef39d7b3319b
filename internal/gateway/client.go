package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("gateway: not connected")

// RemoteError — шлюз ответил кадром KindError.
type RemoteError struct {
	Seq uint32
	Msg string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gateway: request %d failed: %s", e.Seq, e.Msg)
}

type Config struct {
	URL   string
	Token string
	Guild string // имена каналов резолвятся шлюзом внутри этой гильдии
}

type Client struct {
	url   string
	token string
	guild string

	cmu      sync.Mutex // защищает conn и pingStop
	conn     *websocket.Conn
	pingStop chan struct{}

	seq    uint32
	mu     sync.Mutex
	cbs    map[uint32]func(*Frame) bool
	closed atomic.Bool

	wmu          sync.Mutex   // сериализует запись в websocket
	lastActivity atomic.Int64 // unix nanos последнего принятого кадра

	// "События"
	OnConnecting   func()
	OnConnected    func()
	OnMessage      func(Message)
	OnDisconnected func()
	OnError        func(error)
}

func New(cfg Config) *Client {
	return &Client{
		url:   cfg.URL,
		token: cfg.Token,
		guild: cfg.Guild,
		cbs:   make(map[uint32]func(*Frame) bool),
	}
}

// Connect — устанавливает WebSocket и запускает readLoop.
// Отмена ctx закрывает соединение и завершает readLoop.
func (c *Client) Connect(ctx context.Context) error {
	if c.OnConnecting != nil {
		c.OnConnecting()
	}
	conn, err := c.dialAndSetup()
	if err != nil {
		return err
	}
	c.closed.Store(false)
	c.setConn(conn)

	if c.OnConnected != nil {
		c.OnConnected()
	}

	go c.readLoop(ctx)
	return nil
}

// Disconnect закрывает соединение; OnDisconnected вызовет readLoop на выходе.
func (c *Client) Disconnect() {
	c.closed.Store(true)
	c.closeConn()
}

func (c *Client) IsConnected() bool {
	return c.currentConn() != nil && !c.closed.Load()
}

// Send — отправляет кадр, присваивая ему seq.
// Если cb != nil, он будет вызван ответом с тем же seq; если cb вернёт true,
// дальше кадр не обрабатывается.
func (c *Client) Send(f *Frame, cb func(*Frame) bool) error {
	conn := c.currentConn()
	if conn == nil {
		return ErrNotConnected
	}
	f.Seq = c.nextSeq()

	if cb != nil {
		c.mu.Lock()
		c.cbs[f.Seq] = cb
		c.mu.Unlock()
	}

	data := f.Marshal()

	c.wmu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	werr := conn.WriteMessage(websocket.BinaryMessage, data)
	c.wmu.Unlock()

	if werr != nil {
		// сеть упала между подготовкой и записью — подчищаем cb
		c.dropCallback(f.Seq)
		return werr
	}
	return nil
}

// Request отправляет кадр и ждёт KindResult/KindError с тем же seq.
func (c *Client) Request(ctx context.Context, f *Frame) (*Frame, error) {
	respCh := make(chan *Frame, 1)

	err := c.Send(f, func(r *Frame) bool {
		respCh <- r
		return true
	})
	if err != nil {
		return nil, err
	}

	select {
	case r := <-respCh:
		if r.Kind == KindError {
			return nil, &RemoteError{Seq: f.Seq, Msg: r.Error}
		}
		return r, nil
	case <-ctx.Done():
		c.dropCallback(f.Seq)
		return nil, ctx.Err()
	}
}

func (c *Client) dropCallback(seq uint32) {
	c.mu.Lock()
	delete(c.cbs, seq)
	c.mu.Unlock()
}
