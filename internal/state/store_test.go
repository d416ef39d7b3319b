package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StarterScenario(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "botInfo.json")
	starter := filepath.Join(dir, "starterInfo.json")
	require.NoError(t, os.WriteFile(starter, []byte(starterDoc), 0644))

	store := NewStore(save, starter)
	st, from, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, starter, from)
	assert.Empty(t, st.Games)

	_, err = st.AddGame("Chess")
	require.NoError(t, err)
	require.NoError(t, store.Save(st))

	reloaded, from, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, save, from)
	require.Len(t, reloaded.Games, 1)
	assert.Equal(t, "Chess", reloaded.Games[0].Name)

	// Стартовый файл не тронут.
	b, err := os.ReadFile(starter)
	require.NoError(t, err)
	assert.Equal(t, starterDoc, string(b))
}

func TestStore_SaveFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "nested", "botInfo.json"), "")

	st := &GlobalState{Games: []GameEntry{NewGame("Chess")}}
	require.NoError(t, store.Save(st))

	b, err := os.ReadFile(store.SavePath())
	require.NoError(t, err)
	out := string(b)
	assert.True(t, strings.HasPrefix(out, "{\n    \"farewells\": []"), out)
	assert.True(t, strings.Index(out, `"games"`) < strings.Index(out, `"suggestions"`))
	assert.True(t, strings.HasSuffix(out, "}\n"))

	leftovers, err := filepath.Glob(filepath.Join(dir, "nested", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStore_MissingFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"))

	st, _, err := store.Load()
	assert.Nil(t, st)
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestStore_BadDocumentIsFatal(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "botInfo.json")
	require.NoError(t, os.WriteFile(save, []byte(`{"games": "Chess"}`), 0644))

	_, from, err := NewStore(save, "").Load()
	assert.Equal(t, save, from)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "games")
}

func TestStore_SaveReportsMkdirError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := NewStore(filepath.Join(blocker, "data", "botInfo.json"), "")
	err := store.Save(newState("Chess"))

	var pe *os.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "mkdir", pe.Op)
}
