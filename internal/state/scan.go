package state

import (
	"regexp"
	"strings"
)

// ScanGames применяет регулярку к строкам истории и возвращает кандидатов
// в порядке первого появления. Имя берётся из группы "name", иначе из
// первой группы, иначе — всё совпадение. Дубликаты (между собой и с existing)
// отбрасываются без учёта регистра.
func ScanGames(re *regexp.Regexp, lines []string, existing []GameEntry) []GameEntry {
	group := 0
	if i := re.SubexpIndex("name"); i > 0 {
		group = i
	} else if re.NumSubexp() > 0 {
		group = 1
	}

	seen := make(map[string]struct{}, len(existing))
	for _, g := range existing {
		seen[strings.ToLower(g.Name)] = struct{}{}
	}

	var out []GameEntry
	for _, line := range lines {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			name := strings.TrimSpace(m[group])
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, NewGame(name))
		}
	}
	return out
}

// Pending — найденные сканом игры, ждущие keep/discard.
type Pending struct {
	games []GameEntry
}

// Stage заменяет буфер новыми кандидатами.
func (p *Pending) Stage(games []GameEntry) {
	p.games = append([]GameEntry(nil), games...)
}

func (p *Pending) Games() []GameEntry {
	return append([]GameEntry(nil), p.games...)
}

func (p *Pending) Len() int { return len(p.games) }

// Keep переносит буфер в состояние. Игры, добавленные после скана,
// повторно не попадут.
func (p *Pending) Keep(st *GlobalState) (int, error) {
	if len(p.games) == 0 {
		return 0, ErrNothingPending
	}
	added := 0
	for _, g := range p.games {
		if _, dup := st.FindGame(g.Name); dup {
			continue
		}
		st.Games = append(st.Games, g)
		added++
	}
	p.games = nil
	return added, nil
}

func (p *Pending) Discard() (int, error) {
	n := len(p.games)
	if n == 0 {
		return 0, ErrNothingPending
	}
	p.games = nil
	return n, nil
}
