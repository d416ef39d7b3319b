package bot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/EgorLis/gamepickerbot/internal/gateway"
	"github.com/EgorLis/gamepickerbot/internal/metrics"
	"github.com/EgorLis/gamepickerbot/internal/state"
)

const (
	eventBuffer    = 64
	requestTimeout = 10 * time.Second
)

// Chat — то, что бот умеет делать с чатом. Реализуется gateway.Client.
type Chat interface {
	SendMessage(channel, text string) error
	History(ctx context.Context, channel string, after time.Time, limit int) ([]gateway.Message, error)
	DeleteMessage(ctx context.Context, channel, messageID string) error
}

type Options struct {
	Name           string // автор, под которым бот пишет в чат
	Prefix         string
	GeneralChannel string
	Location       *time.Location
	HistoryLimit   int
	AutosaveEvery  time.Duration // 0 — без автосейва

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Rand    *rand.Rand
	Now     func() time.Time
}

type event struct {
	ready bool
	msg   gateway.Message
}

type GamePickerBot struct {
	chat  Chat
	store *state.Store
	opts  Options
	log   *slog.Logger

	// mu сериализует изменения состояния и сохранения между воркером,
	// автосейвом и колбэком дисконнекта.
	mu      sync.Mutex
	state   *state.GlobalState
	pending state.Pending
	greeted map[string]string // канал -> дата последнего приветствия/проверки
	rnd     *rand.Rand

	events chan event

	runMu  sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup

	done     chan struct{}
	doneOnce sync.Once
}

func New(chat Chat, store *state.Store, st *state.GlobalState, opts Options) *GamePickerBot {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 500
	}
	if st == nil {
		st = &state.GlobalState{}
	}

	b := &GamePickerBot{
		chat:    chat,
		store:   store,
		opts:    opts,
		log:     opts.Logger,
		state:   st,
		greeted: make(map[string]string),
		rnd:     opts.Rand,
		events:  make(chan event, eventBuffer),
		done:    make(chan struct{}),
	}
	opts.Metrics.SetGames(len(st.Games))
	return b
}

// Bind вешает обработчики бота на события шлюза.
func (b *GamePickerBot) Bind(gw *gateway.Client) {
	gw.OnConnecting = func() { b.log.Info("connecting to gateway") }

	// любое успешное подключение (первое или реконнект) — приветствие в general
	gw.OnConnected = func() {
		b.log.Info("connected to gateway")
		b.push(event{ready: true})
	}

	gw.OnError = func(err error) { b.log.Warn("gateway error", "error", err) }

	gw.OnDisconnected = func() {
		if err := b.save(triggerDisconnect); err == nil {
			b.log.Info("saved", "trigger", triggerDisconnect)
		}
	}

	// OnMessage крутится в readLoop шлюза: History/Delete оттуда звать нельзя,
	// поэтому только кладём в очередь воркера.
	gw.OnMessage = b.Enqueue
}

// Enqueue ставит сообщение в очередь обработки. При переполненной очереди
// сообщение отбрасывается.
func (b *GamePickerBot) Enqueue(m gateway.Message) {
	b.push(event{msg: m})
}

func (b *GamePickerBot) push(ev event) {
	select {
	case b.events <- ev:
	default:
		b.log.Warn("event queue full, dropping", "channel", ev.msg.Channel, "author", ev.msg.Author)
	}
}

// Done закрывается, когда в чате попросили бота уйти.
func (b *GamePickerBot) Done() <-chan struct{} { return b.done }

func (b *GamePickerBot) requestShutdown() {
	b.doneOnce.Do(func() { close(b.done) })
}

func (b *GamePickerBot) Start(ctx context.Context) error {
	if b == nil {
		return errors.New("bot is not initialized")
	}
	if b.chat == nil {
		return errors.New("chat is not set")
	}

	b.runMu.Lock()
	defer b.runMu.Unlock()
	if b.stopCh != nil {
		return errors.New("already started")
	}
	stopCh := make(chan struct{})
	b.stopCh = stopCh

	wctx, cancel := context.WithCancel(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.worker(wctx)
	}()

	if b.opts.AutosaveEvery > 0 {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.autosaveLoop(wctx, b.opts.AutosaveEvery)
		}()
	}

	// сторож для остановки
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		<-stopCh
		cancel()
	}()

	return nil
}

// Stop останавливает воркер и автосейв и делает финальное сохранение.
func (b *GamePickerBot) Stop() {
	b.runMu.Lock()
	ch := b.stopCh
	b.stopCh = nil
	b.runMu.Unlock()

	if ch == nil {
		return // повторный Stop() ничего не делает
	}
	close(ch)
	b.wg.Wait()
	if err := b.save(triggerShutdown); err == nil {
		b.log.Info("saved", "trigger", triggerShutdown)
	}
}

func (b *GamePickerBot) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.events:
			if ev.ready {
				b.greet(ctx, b.opts.GeneralChannel)
				continue
			}
			b.handleMessage(ctx, ev.msg)
		}
	}
}

func (b *GamePickerBot) handleMessage(ctx context.Context, m gateway.Message) {
	if m.Bot || b.isOwn(m) {
		return
	}
	b.log.Debug("message", "channel", m.Channel, "author", m.Author, "text", m.Content)

	if isFarewell(m.Content) {
		b.farewell(m.Channel)
		return
	}

	b.greet(ctx, m.Channel)

	text, ok := b.commandText(m.Content)
	if !ok {
		return
	}
	err := b.HandleCommand(ctx, m.Channel, text)
	switch {
	case err == nil:
	case errors.Is(err, errUnknownCommand) && b.opts.Prefix == "":
		// без префикса любое сообщение похоже на команду — молчим
	default:
		b.say(m.Channel, err.Error())
	}
}

func (b *GamePickerBot) isOwn(m gateway.Message) bool {
	return m.Author == b.opts.Name
}

func (b *GamePickerBot) say(channel, text string) {
	if err := b.chat.SendMessage(channel, text); err != nil {
		b.log.Warn("send failed", "channel", channel, "error", err)
	}
}
