package jsonrec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTypeMismatch — общий sentinel для errors.Is.
var ErrTypeMismatch = errors.New("type mismatch")

// TypeMismatchError — значение по ключу Key нельзя привести к ожидаемой форме.
// Key — путь: "games[2].upvotes".
type TypeMismatchError struct {
	Key      string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
	}
	return fmt.Sprintf("type mismatch at %q: expected %s, got %s", e.Key, e.Expected, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func mismatch(expected string, raw any) *TypeMismatchError {
	return &TypeMismatchError{Expected: expected, Got: jsonKind(raw)}
}

// under добавляет сегмент пути перед ключом ошибки (копия, исходная не меняется).
func under(seg string, err error) error {
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		return err
	}
	out := *tm
	out.Key = joinPath(seg, tm.Key)
	return &out
}

func joinPath(parent, child string) string {
	switch {
	case child == "":
		return parent
	case parent == "":
		return child
	case strings.HasPrefix(child, "["):
		return parent + child
	}
	return parent + "." + child
}
