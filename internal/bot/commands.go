package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/EgorLis/gamepickerbot/internal/state"
)

// сплит с поддержкой кавычек и \" внутри них: load games "(\w+) \"x\""
var reArg = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"|(\S+)`)

var errUnknownCommand = errors.New("unknown command")

// commandText отрезает префикс. false — сообщение не команда.
func (b *GamePickerBot) commandText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, b.opts.Prefix) {
		return "", false
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, b.opts.Prefix))
	return text, text != ""
}

// HandleCommand выполняет команду (без префикса) из канала channel.
// Ответ пишется в channel; ошибка возвращается для пересылки в чат.
func (b *GamePickerBot) HandleCommand(ctx context.Context, channel, text string) error {
	fields := splitArgs(text)
	if len(fields) == 0 {
		return nil
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	err := b.runCommand(ctx, channel, cmd, args)

	label, outcome := cmd, "ok"
	switch {
	case errors.Is(err, errUnknownCommand):
		label, outcome = "unknown", "unknown"
	case err != nil:
		outcome = "error"
	}
	b.opts.Metrics.ObserveCommand(label, outcome)
	if err != nil {
		b.log.Debug("command failed", "command", cmd, "channel", channel, "error", err)
	}
	return err
}

func (b *GamePickerBot) runCommand(ctx context.Context, channel, cmd string, args []string) error {
	say := func(s string) { b.say(channel, s) }
	p := b.opts.Prefix

	switch cmd {

	case "help":
		say(strings.Join([]string{
			p + "help - this list",
			p + "boop - pick a random game",
			p + "games - list games and votes",
			p + "add <name> - add a game",
			p + "remove|rm <name> - remove a game",
			p + "vote up|down <name> - vote for a game",
			p + "hostvote up|down|na <name> - set the host's verdict",
		}, "\n"))
		say(strings.Join([]string{
			p + `load-from|load <channel> "<regex>" - find games in a channel`,
			p + "keep - keep found games",
			p + "discard - drop found games",
			p + "greet off|on [channel] - toggle daily greetings",
			p + "save - save game and bot information",
			p + "poof - delete my messages in this channel",
		}, "\n"))
		return nil

	case "boop":
		b.mu.Lock()
		text, err := b.state.Suggest(b.rnd)
		b.mu.Unlock()
		if err != nil {
			return err
		}
		say(text)
		return nil

	// ---------- GAMES ----------
	case "games":
		b.mu.Lock()
		games := append([]state.GameEntry(nil), b.state.Games...)
		b.mu.Unlock()
		if len(games) == 0 {
			return state.ErrNoGames
		}
		rows := make([]string, 0, len(games))
		for _, g := range games {
			row := fmt.Sprintf("%s (+%d/-%d)", g.Name, g.UpVotes, g.DownVotes)
			if g.HostVote != state.VoteUnset && g.HostVote != "" {
				row += " host: " + string(g.HostVote)
			}
			rows = append(rows, row)
		}
		say("games:\n" + strings.Join(rows, "\n"))
		return nil

	case "add":
		name := strings.Join(args, " ")
		var added state.GameEntry
		err := b.mutate(func(st *state.GlobalState) (err error) {
			added, err = st.AddGame(name)
			return err
		})
		if err != nil {
			return err
		}
		say(fmt.Sprintf("added %s", added.Name))
		return nil

	case "remove", "rm":
		if len(args) == 0 {
			return fmt.Errorf("usage: %sremove <name>", p)
		}
		name := strings.Join(args, " ")
		var removed state.GameEntry
		err := b.mutate(func(st *state.GlobalState) (err error) {
			removed, err = st.RemoveGame(name)
			return err
		})
		if err != nil {
			return err
		}
		say(fmt.Sprintf("removed %s", removed.Name))
		return nil

	case "vote", "hostvote":
		if len(args) < 2 {
			if cmd == "hostvote" {
				return fmt.Errorf("usage: %shostvote up|down|na <name>", p)
			}
			return fmt.Errorf("usage: %svote up|down <name>", p)
		}
		v := state.Vote(strings.ToLower(args[0]))
		name := strings.Join(args[1:], " ")
		var g state.GameEntry
		err := b.mutate(func(st *state.GlobalState) (err error) {
			if cmd == "hostvote" {
				g, err = st.SetHostVote(name, v)
			} else {
				g, err = st.CastVote(name, v)
			}
			return err
		})
		if err != nil {
			return err
		}
		say(fmt.Sprintf("%s: +%d/-%d", g.Name, g.UpVotes, g.DownVotes))
		return nil

	// ---------- LOAD ----------
	case "load-from", "load":
		if len(args) < 2 {
			return fmt.Errorf(`usage: %sload-from <channel> "<regex>"`, p)
		}
		return b.loadFrom(ctx, channel, args[0], strings.Join(args[1:], " "))

	case "keep":
		var kept int
		err := b.mutate(func(st *state.GlobalState) (err error) {
			kept, err = b.pending.Keep(st)
			return err
		})
		if errors.Is(err, state.ErrNothingPending) {
			say("There are no games dummy.")
			return nil
		}
		if err != nil {
			return err
		}
		if kept == 0 {
			say("those games are already on the list")
			return nil
		}
		say("Games saved!")
		return nil

	case "discard":
		b.mu.Lock()
		_, err := b.pending.Discard()
		b.mu.Unlock()
		if errors.Is(err, state.ErrNothingPending) {
			say("I can't delete nothing...")
			return nil
		}
		if err != nil {
			return err
		}
		say("Games discarded.")
		return nil

	// ---------- GREETINGS ----------
	case "greet":
		if len(args) < 1 {
			return fmt.Errorf("usage: %sgreet off|on [channel]", p)
		}
		target := channel
		if len(args) >= 2 {
			target = strings.TrimPrefix(args[1], "#")
		}
		var changed bool
		switch strings.ToLower(args[0]) {
		case "off":
			err := b.mutate(func(st *state.GlobalState) error {
				changed = st.DisableGreeting(target)
				return nil
			})
			if err != nil {
				return err
			}
			if changed {
				say(fmt.Sprintf("greetings disabled in #%s", target))
			} else {
				say(fmt.Sprintf("greetings are already disabled in #%s", target))
			}
			return nil
		case "on":
			err := b.mutate(func(st *state.GlobalState) error {
				changed = st.EnableGreeting(target)
				return nil
			})
			if err != nil {
				return err
			}
			if changed {
				say(fmt.Sprintf("greetings enabled in #%s", target))
			} else {
				say(fmt.Sprintf("greetings are already enabled in #%s", target))
			}
			return nil
		default:
			return fmt.Errorf("usage: %sgreet off|on [channel]", p)
		}

	// ---------- SAVE ----------
	case "save":
		if err := b.save(triggerCommand); err != nil {
			return err
		}
		say("information saved!")
		return nil

	case "poof":
		return b.poof(ctx, channel)

	default:
		return fmt.Errorf("%w. try %shelp", errUnknownCommand, p)
	}
}

// loadFrom сканирует историю source регуляркой и откладывает найденное
// до keep/discard.
func (b *GamePickerBot) loadFrom(ctx context.Context, channel, source, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("bad regex: %w", err)
	}

	hctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	msgs, err := b.chat.History(hctx, strings.TrimPrefix(source, "#"), time.Time{}, b.opts.HistoryLimit)
	if err != nil {
		return fmt.Errorf("couldn't read #%s: %w", source, err)
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if !b.isOwn(m) {
			lines = append(lines, m.Content)
		}
	}

	b.mu.Lock()
	found := state.ScanGames(re, lines, b.state.Games)
	b.pending.Stage(found)
	b.mu.Unlock()

	if len(found) == 0 {
		return state.ErrNoGames
	}
	names := make([]string, 0, len(found))
	for _, g := range found {
		names = append(names, g.Name)
	}
	b.say(channel, "Here's what I found:\n"+strings.Join(names, "\n")+"\n\nkeep or discard?")
	return nil
}

// poof удаляет все сообщения бота в канале.
func (b *GamePickerBot) poof(ctx context.Context, channel string) error {
	hctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	msgs, err := b.chat.History(hctx, channel, time.Time{}, b.opts.HistoryLimit)
	if err != nil {
		return err
	}

	deleted := 0
	for _, m := range msgs {
		if !b.isOwn(m) {
			continue
		}
		if err := b.chat.DeleteMessage(hctx, channel, m.ID); err != nil {
			b.log.Warn("poof: delete failed", "channel", channel, "id", m.ID, "error", err)
			continue
		}
		deleted++
	}
	b.log.Info("poof", "channel", channel, "deleted", deleted)
	return nil
}

func splitArgs(s string) []string {
	var out []string
	for _, m := range reArg.FindAllStringSubmatch(s, -1) {
		if m[2] == "" {
			out = append(out, strings.ReplaceAll(m[1], `\"`, `"`))
		} else {
			out = append(out, m[2])
		}
	}
	return out
}
