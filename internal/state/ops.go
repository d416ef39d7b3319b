package state

import (
	"math/rand"
	"strings"

	"github.com/agnivade/levenshtein"
)

// FindGame ищет игру по имени без учёта регистра и возвращает её индекс.
func (st *GlobalState) FindGame(name string) (int, bool) {
	for i := range st.Games {
		if st.Games[i].Is(name) {
			return i, true
		}
	}
	return -1, false
}

// AddGame добавляет новую игру в конец списка.
func (st *GlobalState) AddGame(name string) (GameEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return GameEntry{}, ErrEmptyName
	}
	if i, ok := st.FindGame(name); ok {
		return GameEntry{}, &DuplicateEntryError{Name: name, Existing: st.Games[i].Name}
	}
	g := NewGame(name)
	st.Games = append(st.Games, g)
	return g, nil
}

// RemoveGame удаляет первую совпавшую игру. Если не нашли — подсказываем
// ближайшее имя.
func (st *GlobalState) RemoveGame(name string) (GameEntry, error) {
	i, ok := st.FindGame(name)
	if !ok {
		return GameEntry{}, st.notFound(name)
	}
	g := st.Games[i]
	st.Games = append(st.Games[:i], st.Games[i+1:]...)
	return g, nil
}

// CastVote увеличивает счётчик up/down.
func (st *GlobalState) CastVote(name string, v Vote) (GameEntry, error) {
	if v != VoteUp && v != VoteDown {
		return GameEntry{}, ErrBadVote
	}
	i, ok := st.FindGame(name)
	if !ok {
		return GameEntry{}, st.notFound(name)
	}
	if v == VoteUp {
		st.Games[i].UpVotes++
	} else {
		st.Games[i].DownVotes++
	}
	return st.Games[i], nil
}

// SetHostVote выставляет флаг голоса хоста (up/down/na).
func (st *GlobalState) SetHostVote(name string, v Vote) (GameEntry, error) {
	switch v {
	case VoteUp, VoteDown, VoteUnset:
	default:
		return GameEntry{}, ErrBadHostVote
	}
	i, ok := st.FindGame(name)
	if !ok {
		return GameEntry{}, st.notFound(name)
	}
	st.Games[i].HostVote = v
	return st.Games[i], nil
}

func (st *GlobalState) PickGame(rnd *rand.Rand) (GameEntry, error) {
	if len(st.Games) == 0 {
		return GameEntry{}, ErrNoGames
	}
	return st.Games[rnd.Intn(len(st.Games))], nil
}

// Suggest выбирает игру и подставляет её в случайный шаблон предложения.
func (st *GlobalState) Suggest(rnd *rand.Rand) (string, error) {
	g, err := st.PickGame(rnd)
	if err != nil {
		return "", err
	}
	tmpl, ok := pick(rnd, st.Suggestions)
	if !ok {
		tmpl = "How about {0}?"
	}
	return FormatTemplate(tmpl, g.Name), nil
}

func (st *GlobalState) Greeting(rnd *rand.Rand) (string, bool) { return pick(rnd, st.Greetings) }
func (st *GlobalState) Farewell(rnd *rand.Rand) (string, bool) { return pick(rnd, st.Farewells) }

// FormatTemplate подставляет значение вместо {0} и {}.
func FormatTemplate(tmpl, value string) string {
	return strings.NewReplacer("{0}", value, "{}", value).Replace(tmpl)
}

// ---------- no-greeting ----------

func (st *GlobalState) GreetingEnabled(channel string) bool {
	for _, c := range st.NoGreeting {
		if c == channel {
			return false
		}
	}
	return true
}

// DisableGreeting добавляет канал в no_greeting. false — канал уже там.
func (st *GlobalState) DisableGreeting(channel string) bool {
	if !st.GreetingEnabled(channel) {
		return false
	}
	st.NoGreeting = append(st.NoGreeting, channel)
	return true
}

// EnableGreeting убирает канал из no_greeting. false — его там не было.
func (st *GlobalState) EnableGreeting(channel string) bool {
	out := st.NoGreeting[:0]
	removed := false
	for _, c := range st.NoGreeting {
		if c == channel {
			removed = true
			continue
		}
		out = append(out, c)
	}
	st.NoGreeting = out
	return removed
}

func (st *GlobalState) notFound(name string) *NotFoundError {
	name = strings.TrimSpace(name)
	return &NotFoundError{Name: name, Suggestion: closestName(name, st.Games)}
}

// closestName — ближайшее имя по Левенштейну в пределах лимита.
func closestName(query string, games []GameEntry) string {
	q := strings.ToLower(query)
	if q == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, g := range games {
		cand := strings.ToLower(g.Name)
		dist := levenshtein.ComputeDistance(q, cand)
		if dist > distanceLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = g.Name, dist
		}
	}
	return best
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func pick(rnd *rand.Rand, items []string) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	return items[rnd.Intn(len(items))], true
}
