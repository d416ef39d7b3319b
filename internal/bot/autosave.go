package bot

import (
	"context"
	"time"

	"github.com/EgorLis/gamepickerbot/internal/state"
)

const (
	triggerCommand    = "command"
	triggerAutosave   = "autosave"
	triggerDisconnect = "disconnect"
	triggerFarewell   = "farewell"
	triggerShutdown   = "shutdown"
)

func (b *GamePickerBot) autosaveLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = b.save(triggerAutosave)
		}
	}
}

func (b *GamePickerBot) save(trigger string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveLocked(trigger)
}

// saveLocked вызывается под b.mu.
func (b *GamePickerBot) saveLocked(trigger string) error {
	err := b.store.Save(b.state)
	b.opts.Metrics.ObserveSave(trigger, err)
	if err != nil {
		b.log.Error("save failed", "trigger", trigger, "path", b.store.SavePath(), "error", err)
		return err
	}
	b.log.Debug("state saved", "trigger", trigger, "path", b.store.SavePath())
	return nil
}

// mutate применяет fn к состоянию под локом и, если fn не вернула ошибку,
// сразу сохраняет.
func (b *GamePickerBot) mutate(fn func(st *state.GlobalState) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := fn(b.state); err != nil {
		return err
	}
	b.opts.Metrics.SetGames(len(b.state.Games))
	return b.saveLocked(triggerCommand)
}

// Snapshot — копия текущего состояния (для тестов и CLI).
func (b *GamePickerBot) Snapshot() *state.GlobalState {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := state.EncodeState(b.state)
	if err != nil {
		return nil
	}
	st, err := state.DecodeState(data)
	if err != nil {
		return nil
	}
	return st
}
