package cardimport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/storage"
)

const authoring = `[
  {"title": "Ember Drake", "type": "Minion", "class": "Red", "cost": "3", "attack": 3, "health": 2},
  {"title": "Arcane Bolt", "type": "Spell", "class": "Blue", "cost": "1"},
  {"title": "Moonlit Grove", "type": "Stage", "cost": "Free Summon"}
]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func byTitle(defs []*cards.Card) map[string]int {
	out := make(map[string]int, len(defs))
	for _, c := range defs {
		out[c.Title] = c.ID
	}
	return out
}

func TestAssignStableIDs(t *testing.T) {
	records := []cards.Record{
		{Title: "Ember Drake", Type: "Minion"},
		{Title: "New Card", Type: "Spell"},
		{Title: "Explicit", Type: "Spell", ID: 40},
		{Title: "ember drake", Type: "Minion"},
		{Title: "  ", Type: "Minion"},
		{Title: "Taken ID", Type: "Minion", ID: 7},
	}
	existing := map[string]int{"EMBER DRAKE": 7, "Old Card": 12}

	defs, result := AssignStableIDs(records, existing)
	ids := byTitle(defs)

	assert.Equal(t, 7, ids["Ember Drake"], "known title keeps its ID")
	assert.Equal(t, 40, ids["Explicit"])
	assert.Equal(t, 41, ids["New Card"], "new titles go after the highest ID")
	assert.Equal(t, 42, ids["Taken ID"], "explicit ID already in use is replaced")
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, result.Kept)
	assert.Equal(t, 3, result.New)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Warnings, 2)
}

func TestRun_JSONSinkKeepsIDsAcrossImports(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "cards.json")
	output := filepath.Join(dir, "out", "catalog.json")
	ctx := context.Background()

	writeFile(t, source, authoring)
	sink := NewJSONSink(output)

	result, err := Run(ctx, source, sink)
	require.NoError(t, err)
	assert.Equal(t, 3, result.New)

	first, err := cards.NewFileLoader(output).LoadAll(ctx)
	require.NoError(t, err)
	firstIDs := byTitle(first)
	assert.Equal(t, map[string]int{"Ember Drake": 1, "Arcane Bolt": 2, "Moonlit Grove": 3}, firstIDs)
	assert.Equal(t, cards.FactionRed, first[0].Faction)

	// Reorder, drop one card and add another.
	writeFile(t, source, `[
  {"title": "Brand New", "type": "Minion"},
  {"title": "Moonlit Grove", "type": "Stage"},
  {"title": "Ember Drake", "type": "Minion", "class": "Red"}
]`)
	result, err = Run(ctx, source, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Kept)
	assert.Equal(t, 1, result.New)

	second, err := cards.NewFileLoader(output).LoadAll(ctx)
	require.NoError(t, err)
	secondIDs := byTitle(second)
	assert.Equal(t, 1, secondIDs["Ember Drake"])
	assert.Equal(t, 3, secondIDs["Moonlit Grove"])
	assert.Equal(t, 4, secondIDs["Brand New"])
}

func TestRun_SQLSink(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "cards.json")
	writeFile(t, source, authoring)

	db, err := storage.Open(storage.DefaultConfig(filepath.Join(dir, "deckkeeper.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	sink := NewSQLSink(db)

	_, err = Run(ctx, source, sink)
	require.NoError(t, err)

	result, err := Run(ctx, source, sink)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Kept)
	assert.Zero(t, result.New)

	catalog, err := cards.LoadCatalog(ctx, storage.NewSQLStore(db).Cards())
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())

	grove, ok := catalog.FindByTitle("moonlit grove")
	require.True(t, ok)
	assert.Equal(t, cards.TypeStage, grove.Type)
	assert.Equal(t, "Free Summon", grove.Cost)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	sink := NewJSONSink(filepath.Join(dir, "out.json"))

	_, err := Run(context.Background(), filepath.Join(dir, "missing.json"), sink)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"not": "an array"}`)
	_, err = Run(context.Background(), bad, sink)
	assert.Error(t, err)
}

func TestWatch_ReimportsOnChange(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "cards.json")
	output := filepath.Join(dir, "catalog.json")
	writeFile(t, source, authoring)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *Result, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, source, NewJSONSink(output), 20*time.Millisecond, func(r *Result, err error) {
			if err == nil {
				results <- r
			}
		})
	}()

	select {
	case r := <-results:
		assert.Equal(t, 3, r.Total)
	case <-time.After(5 * time.Second):
		t.Fatal("initial import did not run")
	}

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, source, `[{"title": "Only One", "type": "Spell"}]`)

	select {
	case r := <-results:
		assert.Equal(t, 1, r.Total)
		assert.Equal(t, 1, r.New)
	case <-time.After(5 * time.Second):
		t.Fatal("change was not re-imported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
