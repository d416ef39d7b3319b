package state

import (
	"errors"
	"fmt"
)

// Тексты ошибок домена уходят в чат как есть.
var (
	ErrMissingFile    = errors.New("neither save file nor starter file exists")
	ErrEmptyName      = errors.New("a game needs a name")
	ErrNoGames        = errors.New("I couldn't find any games")
	ErrNothingPending = errors.New("there are no games waiting to be kept or discarded")
	ErrBadVote        = errors.New("vote must be up or down")
	ErrBadHostVote    = errors.New("host vote must be up, down or na")

	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

type NotFoundError struct {
	Name       string
	Suggestion string // ближайшее похожее имя, может быть пустым
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("I couldn't find %q. Did you mean %q?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("I couldn't find %q", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type DuplicateEntryError struct {
	Name     string
	Existing string
}

func (e *DuplicateEntryError) Error() string {
	if e.Existing != "" && e.Existing != e.Name {
		return fmt.Sprintf("%q is already on the list (as %q)", e.Name, e.Existing)
	}
	return fmt.Sprintf("%q is already on the list", e.Name)
}

func (e *DuplicateEntryError) Is(target error) bool { return target == ErrDuplicateEntry }
