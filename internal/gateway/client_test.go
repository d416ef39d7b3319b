package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway — тестовый шлюз: запоминает отправленные сообщения, отвечает
// на history и delete, умеет пушить события.
type fakeGateway struct {
	t        *testing.T
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *websocket.Conn
	sent    []Frame
	auth    string
	guild   string
	history []Message
	failDel bool
	ready   chan struct{}
}

func newFakeGateway(t *testing.T) *fakeGateway {
	g := &fakeGateway{t: t, ready: make(chan struct{}, 1)}
	g.srv = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) url() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http")
}

func (g *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	g.mu.Lock()
	g.conn = conn
	g.auth = r.Header.Get("Authorization")
	g.guild = r.Header.Get("X-Guild")
	g.mu.Unlock()
	g.ready <- struct{}{}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f Frame
		if err := f.Unmarshal(data); err != nil {
			g.t.Errorf("server: %v", err)
			return
		}

		g.mu.Lock()
		g.sent = append(g.sent, f)
		history, failDel := g.history, g.failDel
		g.mu.Unlock()

		switch f.Kind {
		case KindHistory:
			g.write(&Frame{Seq: f.Seq, Kind: KindResult, Messages: history})
		case KindDelete:
			if failDel {
				g.write(&Frame{Seq: f.Seq, Kind: KindError, Error: "missing permissions"})
			} else {
				g.write(&Frame{Seq: f.Seq, Kind: KindResult})
			}
		}
	}
}

func (g *fakeGateway) write(f *Frame) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.conn.WriteMessage(websocket.BinaryMessage, f.Marshal())
}

func (g *fakeGateway) frames() []Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Frame(nil), g.sent...)
}

func connect(t *testing.T, g *fakeGateway) *Client {
	t.Helper()
	c := New(Config{URL: g.url(), Token: "secret", Guild: "friends"})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return connectWith(t, ctx, c, g)
}

func connectWith(t *testing.T, ctx context.Context, c *Client, g *fakeGateway) *Client {
	t.Helper()
	require.NoError(t, c.Connect(ctx))
	select {
	case <-g.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not accept connection")
	}
	return c
}

func TestClient_SendMessage(t *testing.T) {
	g := newFakeGateway(t)
	c := connect(t, g)
	defer c.Disconnect()

	require.NoError(t, c.SendMessage("general", "good morning"))

	require.Eventually(t, func() bool { return len(g.frames()) == 1 }, 2*time.Second, 10*time.Millisecond)
	f := g.frames()[0]
	assert.Equal(t, KindSend, f.Kind)
	assert.Equal(t, "general", f.Channel)
	assert.Equal(t, "good morning", f.Content)
	assert.NotZero(t, f.Seq)

	g.mu.Lock()
	assert.Equal(t, "Bearer secret", g.auth)
	assert.Equal(t, "friends", g.guild)
	g.mu.Unlock()
}

func TestClient_History(t *testing.T) {
	g := newFakeGateway(t)
	g.history = []Message{
		{ID: "2", Channel: "games", Author: "bob", Content: "game: Go"},
		{ID: "1", Channel: "games", Author: "ann", Content: "game: Chess"},
	}
	c := connect(t, g)
	defer c.Disconnect()

	after := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msgs, err := c.History(ctx, "games", after, 50)
	require.NoError(t, err)
	assert.Equal(t, g.history, msgs)

	req := g.frames()[0]
	assert.Equal(t, KindHistory, req.Kind)
	assert.Equal(t, uint32(50), req.Limit)
	assert.True(t, after.Equal(req.After))
}

func TestClient_DeleteMessageError(t *testing.T) {
	g := newFakeGateway(t)
	g.failDel = true
	c := connect(t, g)
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.DeleteMessage(ctx, "games", "1")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "missing permissions", remote.Msg)
}

func TestClient_OnMessage(t *testing.T) {
	g := newFakeGateway(t)
	got := make(chan Message, 1)

	c := New(Config{URL: g.url()})
	c.OnMessage = func(m Message) { got <- m }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	connectWith(t, ctx, c, g)
	defer c.Disconnect()

	g.write(&Frame{Kind: KindMessage, Messages: []Message{{ID: "9", Channel: "general", Author: "ann", Content: "!boop"}}})

	select {
	case m := <-got:
		assert.Equal(t, "!boop", m.Content)
		assert.Equal(t, "general", m.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestClient_RequestContextCanceled(t *testing.T) {
	g := newFakeGateway(t)
	c := connect(t, g)
	defer c.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Шлюз не отвечает на KindSend, поэтому выйти можно только по ctx.
	_, err := c.Request(ctx, &Frame{Kind: KindSend, Channel: "x"})
	assert.ErrorIs(t, err, context.Canceled)

	c.mu.Lock()
	assert.Empty(t, c.cbs)
	c.mu.Unlock()
}

func TestClient_DisconnectCallsHook(t *testing.T) {
	g := newFakeGateway(t)
	done := make(chan struct{})

	c := New(Config{URL: g.url()})
	c.OnDisconnected = func() { close(done) }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	connectWith(t, ctx, c, g)

	assert.True(t, c.IsConnected())
	c.Disconnect()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("OnDisconnected not called")
	}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.SendMessage("general", "late"), ErrNotConnected)
}

func TestClient_Health(t *testing.T) {
	g := newFakeGateway(t)

	c := New(Config{URL: g.url()})
	assert.ErrorIs(t, c.Health(time.Minute), ErrNotConnected)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	connectWith(t, ctx, c, g)

	assert.NoError(t, c.Health(time.Minute))
	assert.Less(t, c.SinceLastActivity(), time.Minute)

	c.lastActivity.Store(time.Now().Add(-2 * time.Minute).UnixNano())
	assert.ErrorContains(t, c.Health(time.Minute), "no activity")

	c.Disconnect()
	assert.ErrorIs(t, c.Health(time.Minute), ErrNotConnected)
}
