package state

import (
	"fmt"

	"github.com/EgorLis/gamepickerbot/internal/jsonrec"
)

var (
	stateGameChannel = jsonrec.Basic("gameChannel", jsonrec.String)
	stateGeneral     = jsonrec.Basic("general", jsonrec.String)
	stateNoGreeting  = jsonrec.List("no_greeting", jsonrec.String)

	// channelSchema — настройки каналов, подключается к GlobalSchema.
	channelSchema = jsonrec.NewSchema("channels", stateGameChannel, stateGeneral, stateNoGreeting)

	stateGames       = jsonrec.List("games", jsonrec.Nested(GameSchema))
	stateSuggestions = jsonrec.List("suggestions", jsonrec.String)
	stateGreetings   = jsonrec.List("greetings", jsonrec.String)
	stateFarewells   = jsonrec.List("farewells", jsonrec.String)

	GlobalSchema = jsonrec.NewSchema("state",
		stateGames, stateSuggestions, stateGreetings, stateFarewells,
	).Include(channelSchema)
)

// GlobalState — всё изменяемое состояние бота. Владелец один; синхронизация
// (если нужна) — на стороне вызывающего.
type GlobalState struct {
	GameChannel string
	General     string
	Games       []GameEntry
	Suggestions []string // шаблоны с {0}
	Greetings   []string
	Farewells   []string
	NoGreeting  []string // имена каналов, используется как множество

	Extra jsonrec.Record
}

func StateFromRecord(rec jsonrec.Record) *GlobalState {
	gameRecs := stateGames.GetOr(rec, nil)
	games := make([]GameEntry, 0, len(gameRecs))
	for _, gr := range gameRecs {
		games = append(games, GameFromRecord(gr))
	}
	return &GlobalState{
		GameChannel: stateGameChannel.GetOr(rec, ""),
		General:     stateGeneral.GetOr(rec, ""),
		Games:       games,
		Suggestions: stateSuggestions.GetOr(rec, []string{}),
		Greetings:   stateGreetings.GetOr(rec, []string{}),
		Farewells:   stateFarewells.GetOr(rec, []string{}),
		NoGreeting:  stateNoGreeting.GetOr(rec, []string{}),
		Extra:       extraOf(rec, GlobalSchema),
	}
}

// Record собирает документ для сохранения. gameChannel/general пишутся
// только если заданы.
func (st *GlobalState) Record() jsonrec.Record {
	rec := st.Extra.Clone()
	if rec == nil {
		rec = jsonrec.Record{}
	}
	if st.GameChannel != "" {
		stateGameChannel.Set(rec, st.GameChannel)
	}
	if st.General != "" {
		stateGeneral.Set(rec, st.General)
	}

	games := make([]jsonrec.Record, 0, len(st.Games))
	for _, g := range st.Games {
		games = append(games, g.Record())
	}
	stateGames.Set(rec, games)
	stateSuggestions.Set(rec, nonNil(st.Suggestions))
	stateGreetings.Set(rec, nonNil(st.Greetings))
	stateFarewells.Set(rec, nonNil(st.Farewells))
	stateNoGreeting.Set(rec, nonNil(st.NoGreeting))
	return rec
}

// DecodeState гидрирует документ сохранения.
func DecodeState(data []byte) (*GlobalState, error) {
	rec, err := GlobalSchema.HydrateJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return StateFromRecord(rec), nil
}

// EncodeState — отсортированные ключи, отступ 4 пробела.
func EncodeState(st *GlobalState) ([]byte, error) {
	return jsonrec.Marshal(st.Record())
}

// nonNil копирует срез; nil превращается в пустой список, а не в null.
func nonNil(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
