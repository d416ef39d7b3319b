package jsonrec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vote string

var (
	tName   = Basic("name", String)
	tUp     = Basic("upvotes", Int)
	tVote   = Basic("vote", Enum[vote]("up", "down", "na"))
	tFlags  = List("flags", String)
	tScores = Dict("scores", Int)
	tGame   = NewSchema("game", tName, tUp, tVote, tFlags, tScores)

	tGames  = List("games", Nested(tGame))
	tTitle  = Basic("title", String)
	tRoot   = Basic("root", String)
	tBase   = NewSchema("base", tTitle).Include(NewSchema("root", tRoot))
	tHolder = NewSchema("holder", tGames).Include(tBase)
)

func TestHydrate_CoercesClaimedKeys(t *testing.T) {
	rec, err := tGame.HydrateJSON([]byte(`{
		"name": "Chess",
		"upvotes": 3,
		"vote": "up",
		"flags": ["a", "b", "c"],
		"scores": {"ann": 2, "bob": "5"}
	}`))
	require.NoError(t, err)

	name, ok := tName.Get(rec)
	require.True(t, ok)
	assert.Equal(t, "Chess", name)
	assert.Equal(t, 3, tUp.GetOr(rec, -1))
	assert.Equal(t, vote("up"), tVote.GetOr(rec, ""))
	assert.Equal(t, []string{"a", "b", "c"}, tFlags.GetOr(rec, nil))
	assert.Equal(t, map[string]int{"ann": 2, "bob": 5}, tScores.GetOr(rec, nil))
	assert.Empty(t, rec.Manual(tGame))
}

func TestHydrate_PreservesUnknownKeys(t *testing.T) {
	rec, err := tHolder.HydrateJSON([]byte(`{"games": [], "mysteryField": 42, "nested": {"a": [1, 2]}}`))
	require.NoError(t, err)

	assert.Equal(t, json.Number("42"), rec["mysteryField"])
	assert.Equal(t, []string{"mysteryField", "nested"}, rec.Manual(tHolder))

	out, err := Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"mysteryField": 42`)

	again, err := tHolder.HydrateJSON(out)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrate_TypeMismatchAbortsRecord(t *testing.T) {
	rec, err := tGame.HydrateJSON([]byte(`{"name": "Chess", "upvotes": "not-a-number"}`))
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "upvotes", tm.Key)
	assert.Equal(t, "int", tm.Expected)
	assert.Equal(t, "string", tm.Got)
}

func TestHydrate_IntOutOfRange(t *testing.T) {
	rec, err := tGame.HydrateJSON([]byte(`{"name": "Chess", "upvotes": 9223372036854775808}`))
	assert.Nil(t, rec)

	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "upvotes", tm.Key)
}

func TestHydrate_MismatchPaths(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		doc     string
		wantKey string
		wantExp string
	}{
		{
			name:    "list expected",
			schema:  tGame,
			doc:     `{"flags": "a"}`,
			wantKey: "flags",
			wantExp: "list",
		},
		{
			name:    "list element",
			schema:  tGame,
			doc:     `{"flags": ["a", {}, "c"]}`,
			wantKey: "flags[1]",
			wantExp: "string",
		},
		{
			name:    "dict value",
			schema:  tGame,
			doc:     `{"scores": {"ann": true}}`,
			wantKey: "scores.ann",
			wantExp: "int",
		},
		{
			name:    "enum literal",
			schema:  tGame,
			doc:     `{"vote": "sideways"}`,
			wantKey: "vote",
			wantExp: `one of "up"|"down"|"na"`,
		},
		{
			name:    "nested record field",
			schema:  tHolder,
			doc:     `{"games": [{"name": "a"}, {"upvotes": 1.5}]}`,
			wantKey: "games[1].upvotes",
			wantExp: "int",
		},
		{
			name:    "nested record not an object",
			schema:  tHolder,
			doc:     `{"games": ["chess"]}`,
			wantKey: "games[0]",
			wantExp: "game object",
		},
		{
			name:    "null value",
			schema:  tGame,
			doc:     `{"name": null}`,
			wantKey: "name",
			wantExp: "string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.schema.HydrateJSON([]byte(tt.doc))
			assert.Nil(t, rec)
			var tm *TypeMismatchError
			require.ErrorAs(t, err, &tm)
			assert.Equal(t, tt.wantKey, tm.Key)
			assert.Equal(t, tt.wantExp, tm.Expected)
		})
	}
}

func TestHydrate_EmptyInput(t *testing.T) {
	for _, doc := range []string{"", "  ", "null", "{}"} {
		rec, err := tGame.HydrateJSON([]byte(doc))
		require.NoError(t, err, doc)
		assert.NotNil(t, rec)
		assert.Empty(t, rec)
	}

	rec, err := tGame.Hydrate(nil)
	require.NoError(t, err)
	assert.Empty(t, rec)

	// Пустая запись заполняется по полям.
	tName.Set(rec, "Go")
	assert.Equal(t, "Go", tName.GetOr(rec, ""))
	tName.Delete(rec)
	_, ok := tName.Get(rec)
	assert.False(t, ok)
}

func TestHydrate_TopLevelMustBeObject(t *testing.T) {
	_, err := tGame.HydrateJSON([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = tGame.HydrateJSON([]byte(`{"name": `))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTypeMismatch)
}

func TestHydrate_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{
		"name":  "Chess",
		"extra": map[string]any{"k": []any{"v"}},
	}
	rec, err := tGame.Hydrate(raw)
	require.NoError(t, err)

	rec["extra"].(map[string]any)["k"] = "changed"
	tName.Set(rec, "Go")

	assert.Equal(t, "Chess", raw["name"])
	assert.Equal(t, []any{"v"}, raw["extra"].(map[string]any)["k"])
}

func TestSchema_IncludeSingleLevel(t *testing.T) {
	// holder видит свои поля и поля base, но не поля root (родитель base).
	assert.True(t, tHolder.Claims("games"))
	assert.True(t, tHolder.Claims("title"))
	assert.False(t, tHolder.Claims("root"))

	rec, err := tHolder.HydrateJSON([]byte(`{"title": 7, "root": 7}`))
	require.NoError(t, err)
	assert.Equal(t, "7", tTitle.GetOr(rec, ""))
	assert.Equal(t, json.Number("7"), rec["root"])
	assert.Equal(t, []string{"root"}, rec.Manual(tHolder))
}

func TestSchema_OwnFieldShadowsParent(t *testing.T) {
	parent := NewSchema("parent", Basic("n", String))
	child := NewSchema("child", Basic("n", Int)).Include(parent)

	require.Len(t, child.Fields(), 1)
	assert.Equal(t, ShapeBasic, child.Fields()[0].Shape())

	rec, err := child.HydrateJSON([]byte(`{"n": 5}`))
	require.NoError(t, err)
	assert.Equal(t, 5, rec["n"])
}

func TestMarshal_SortedIndented(t *testing.T) {
	rec := Record{"b": 1, "a": []string{"x"}, "c": "<&>"}
	out, err := Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": [\n        \"x\"\n    ],\n    \"b\": 1,\n    \"c\": \"<&>\"\n}\n", string(out))

	out, err = Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}
