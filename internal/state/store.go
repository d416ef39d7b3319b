package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store читает и пишет файл сохранения. Если его нет — стартует со
// стартового шаблона той же формы.
type Store struct {
	mu          sync.Mutex
	savePath    string
	starterPath string
}

func NewStore(savePath, starterPath string) *Store {
	return &Store{savePath: savePath, starterPath: starterPath}
}

func (s *Store) SavePath() string { return s.savePath }

// Load возвращает состояние и путь, из которого оно прочитано.
func (s *Store) Load() (*GlobalState, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.savePath, s.starterPath} {
		if path == "" {
			continue
		}
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, path, err
		}
		st, err := DecodeState(b)
		if err != nil {
			return nil, path, fmt.Errorf("%s: %w", path, err)
		}
		return st, path, nil
	}
	return nil, "", fmt.Errorf("%w (save=%q starter=%q)", ErrMissingFile, s.savePath, s.starterPath)
}

// Save пишет файл целиком: временный файл рядом + rename.
func (s *Store) Save(st *GlobalState) error {
	b, err := EncodeState(st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.savePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.savePath)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // после rename ничего не удалит

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, s.savePath)
}
