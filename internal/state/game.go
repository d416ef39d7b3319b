package state

import (
	"strings"

	"github.com/EgorLis/gamepickerbot/internal/jsonrec"
)

// Vote — трёхпозиционный флаг голоса хоста.
type Vote string

const (
	VoteUp    Vote = "up"
	VoteDown  Vote = "down"
	VoteUnset Vote = "na"
)

// Ключи совпадают с уже существующими файлами сохранений (включая
// непоследовательный регистр upvotes/downVotes).
var (
	gameName      = jsonrec.Basic("name", jsonrec.String)
	gameUpVotes   = jsonrec.Basic("upvotes", jsonrec.Int)
	gameDownVotes = jsonrec.Basic("downVotes", jsonrec.Int)
	gameHostVote  = jsonrec.Basic("julianVote", jsonrec.Enum(VoteUp, VoteDown, VoteUnset))
	gameFlags     = jsonrec.List("flags", jsonrec.String)

	GameSchema = jsonrec.NewSchema("game", gameName, gameUpVotes, gameDownVotes, gameHostVote, gameFlags)
)

type GameEntry struct {
	Name      string
	UpVotes   int
	DownVotes int
	HostVote  Vote
	Flags     []string

	// Extra — поля из файла, которые схема не знает.
	Extra jsonrec.Record
}

func NewGame(name string) GameEntry {
	return GameEntry{Name: name, HostVote: VoteUnset, Flags: []string{}}
}

// GameFromRecord переводит гидрированную запись в структуру. Отсутствующие
// поля получают нулевые значения.
func GameFromRecord(rec jsonrec.Record) GameEntry {
	return GameEntry{
		Name:      gameName.GetOr(rec, ""),
		UpVotes:   gameUpVotes.GetOr(rec, 0),
		DownVotes: gameDownVotes.GetOr(rec, 0),
		HostVote:  gameHostVote.GetOr(rec, VoteUnset),
		Flags:     gameFlags.GetOr(rec, []string{}),
		Extra:     extraOf(rec, GameSchema),
	}
}

// Record — обратное преобразование; пишутся все известные поля.
func (g GameEntry) Record() jsonrec.Record {
	rec := g.Extra.Clone()
	if rec == nil {
		rec = jsonrec.Record{}
	}
	vote := g.HostVote
	if vote == "" {
		vote = VoteUnset
	}
	gameName.Set(rec, g.Name)
	gameUpVotes.Set(rec, g.UpVotes)
	gameDownVotes.Set(rec, g.DownVotes)
	gameHostVote.Set(rec, vote)
	gameFlags.Set(rec, nonNil(g.Flags))
	return rec
}

// Is — сравнение имени без учёта регистра.
func (g GameEntry) Is(name string) bool {
	return strings.EqualFold(g.Name, strings.TrimSpace(name))
}

func extraOf(rec jsonrec.Record, s *jsonrec.Schema) jsonrec.Record {
	keys := rec.Manual(s)
	if len(keys) == 0 {
		return nil
	}
	out := make(jsonrec.Record, len(keys))
	for _, k := range keys {
		out[k] = rec[k]
	}
	return out.Clone()
}
