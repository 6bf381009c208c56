package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deckkeeper/internal/api/handlers"
	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/decklist"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
	"github.com/ramonehamilton/deckkeeper/internal/storage"
)

func testCatalog() *cards.Catalog {
	return cards.NewCatalog([]*cards.Card{
		{ID: 1, Title: "Ember Drake", Type: cards.TypeMinion, Faction: cards.FactionRed},
		{ID: 2, Title: "Tide Caller", Type: cards.TypeMinion, Faction: cards.FactionBlue},
		{ID: 3, Title: "Arcane Bolt", Type: cards.TypeSpell, Faction: cards.FactionBlue},
		{ID: 10, Title: "Moonlit Grove", Type: cards.TypeStage},
	})
}

type testEnv struct {
	server  *Server
	manager *deckmanager.Manager
	store   *storage.FileStore
}

func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	manager := deckmanager.New(testCatalog(), deckmanager.WithStore(store))
	_, err = manager.Load(context.Background())
	require.NoError(t, err)

	if cfg == nil {
		cfg = &Config{Port: 0}
	}
	return &testEnv{server: NewServer(cfg, manager), manager: manager, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func TestNewServer_Defaults(t *testing.T) {
	server := NewServer(nil, deckmanager.New(testCatalog()))
	assert.Equal(t, 8080, server.Port())
	assert.NotNil(t, server.limiter)
	assert.Equal(t, DefaultConfig().Timeout, server.timeout)
	assert.NoError(t, server.Shutdown(context.Background()))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(4), body["cards"])
}

func TestCards(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/cards?q=blue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []cards.Card
	decodeData(t, rec, &found)
	require.Len(t, found, 2)
	assert.Equal(t, "Arcane Bolt", found[0].Title)

	rec = env.do(t, http.MethodGet, "/api/v1/cards/10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grove cards.Card
	decodeData(t, rec, &grove)
	assert.Equal(t, cards.TypeStage, grove.Type)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/cards/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/cards/99", nil).Code)
}

func TestDecks_CreateSelectDelete(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/decks", handlers.CreateDeckRequest{Name: "Aggro"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created handlers.DeckResponse
	decodeData(t, rec, &created)
	assert.Equal(t, "Aggro", created.Deck.Name)
	assert.True(t, created.Persisted)
	_, err := os.Stat(env.store.DecksPath())
	assert.NoError(t, err, "create should persist the deck set")

	rec = env.do(t, http.MethodPost, "/api/v1/decks", handlers.CreateDeckRequest{Name: "Aggro"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var failure response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failure))
	assert.Equal(t, "name_taken", failure.Reason)
	assert.Equal(t, http.StatusConflict, failure.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/decks", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var untitled handlers.DeckResponse
	decodeData(t, rec, &untitled)
	assert.NotEmpty(t, untitled.Deck.Name)

	rec = env.do(t, http.MethodPut, "/api/v1/decks/selected", handlers.SelectDeckRequest{DeckID: untitled.Deck.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/decks/selected", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var selected handlers.DeckView
	decodeData(t, rec, &selected)
	assert.Equal(t, untitled.Deck.ID, selected.ID)
	assert.True(t, selected.Selected)

	rec = env.do(t, http.MethodGet, "/api/v1/decks", nil)
	var list []handlers.DeckListItem
	decodeData(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Aggro", list[0].Name)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/v1/decks/selected", handlers.SelectDeckRequest{DeckID: "nope"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/decks/nope", nil).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/decks/"+untitled.Deck.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/decks/"+untitled.Deck.ID, nil).Code)
	assert.Equal(t, created.Deck.ID, env.manager.SelectedDeckID(), "selection falls back to the first deck")
}

func TestSession_EditAndCommit(t *testing.T) {
	env := newTestEnv(t, nil)
	d, err := env.manager.CreateDeck("Tempo")
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodGet, "/api/v1/session", nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/session/cards/1", nil).Code)

	rec := env.do(t, http.MethodPost, "/api/v1/session", handlers.StartSessionRequest{DeckID: d.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, path := range []string{"/api/v1/session/cards/1", "/api/v1/session/cards/1", "/api/v1/session/cards/10"} {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, nil).Code)
	}
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/session/cards/1", nil).Code, "third copy")

	rec = env.do(t, http.MethodGet, "/api/v1/session/can-add/1", nil)
	var canAdd handlers.CanAddResponse
	decodeData(t, rec, &canAdd)
	assert.False(t, canAdd.CanAdd)
	assert.Equal(t, 2, canAdd.InDraft)

	rec = env.do(t, http.MethodGet, "/api/v1/session/can-add/10?stage=false", nil)
	decodeData(t, rec, &canAdd)
	assert.False(t, canAdd.CanAdd, "stage card cannot go in the main deck")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/v1/session/cards/1", nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodDelete, "/api/v1/session/cards/2", nil).Code)

	assert.Zero(t, env.manager.GetDeck(d.ID).Count(mustCard(t, env, 1)), "edits stay in the session until commit")

	rec = env.do(t, http.MethodPost, "/api/v1/session/commit", handlers.CommitRequest{Name: "Tempo v2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var committed handlers.DeckResponse
	decodeData(t, rec, &committed)
	assert.True(t, committed.Persisted)
	assert.Equal(t, "Tempo v2", committed.Deck.Name)
	assert.Equal(t, 1, committed.Deck.MainCount)
	assert.Equal(t, 1, committed.Deck.StageCount)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/session/commit", nil).Code)
}

func TestSession_CommitKeepsNameAndDiscard(t *testing.T) {
	env := newTestEnv(t, nil)
	d, err := env.manager.CreateDeck("Keep")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/session", handlers.StartSessionRequest{DeckID: d.ID}).Code)
	rec := env.do(t, http.MethodPost, "/api/v1/session/commit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Keep", env.manager.GetDeck(d.ID).Name)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/session", handlers.StartSessionRequest{DeckID: d.ID}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/session/cards/2", nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/session", nil).Code)
	assert.Zero(t, env.manager.GetDeck(d.ID).Total("main"))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/v1/session", handlers.StartSessionRequest{DeckID: "missing"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/session", nil).Code)
}

func TestGameplay(t *testing.T) {
	env := newTestEnv(t, nil)
	d, err := env.manager.CreateDeck("Play")
	require.NoError(t, err)
	require.NoError(t, env.manager.StartEditingSession(d.ID))
	require.NoError(t, env.manager.AddCardToSession(mustCard(t, env, 1)))
	require.NoError(t, env.manager.AddCardToSession(mustCard(t, env, 3)))
	require.NoError(t, env.manager.CommitEditingSession(context.Background(), "Play"))

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/gameplay/draw", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/gameplay", nil).Code, "nothing selected")

	rec := env.do(t, http.MethodPost, "/api/v1/gameplay", handlers.GameplayRequest{DeckID: d.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	seen := map[int]bool{}
	for remaining := 1; remaining >= 0; remaining-- {
		rec = env.do(t, http.MethodPost, "/api/v1/gameplay/draw", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var drawn handlers.DrawResponse
		decodeData(t, rec, &drawn)
		assert.Equal(t, remaining, drawn.Remaining)
		seen[drawn.Card.ID] = true
	}
	assert.Equal(t, map[int]bool{1: true, 3: true}, seen)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/gameplay/draw", nil).Code)

	assert.Equal(t, 2, env.manager.GetDeck(d.ID).Total("main"), "drawing never touches the stored deck")
}

func TestCollection(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/collection", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var coll handlers.CollectionResponse
	decodeData(t, rec, &coll)
	assert.Equal(t, 4, coll.UniqueCards)
	assert.Equal(t, 8, coll.TotalCards, "first run seeds two copies of every card")

	rec = env.do(t, http.MethodPut, "/api/v1/collection/1", handlers.CountRequest{Count: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	var owned handlers.OwnedResponse
	decodeData(t, rec, &owned)
	assert.Equal(t, 5, owned.Count)
	assert.True(t, owned.Persisted)

	rec = env.do(t, http.MethodPost, "/api/v1/collection/1/add", nil)
	decodeData(t, rec, &owned)
	assert.Equal(t, 6, owned.Count)

	rec = env.do(t, http.MethodPost, "/api/v1/collection/1/remove", handlers.CountRequest{Count: 4})
	decodeData(t, rec, &owned)
	assert.Equal(t, 2, owned.Count)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/collection/1/remove", handlers.CountRequest{Count: 3}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/collection/1/add", handlers.CountRequest{Count: -1}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/collection/1", handlers.CountRequest{Count: -1}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/v1/collection/42", handlers.CountRequest{Count: 1}).Code)
}

func TestImportExport(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/decks/import", handlers.ImportDeckRequest{
		Content: "// Imported\nDeck\n2 Ember Drake\n1 Unknown Card\n\nStage\n1 Moonlit Grove",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result decklist.ImportResult
	decodeData(t, rec, &result)
	assert.Equal(t, "Imported", result.Name)
	assert.Equal(t, 3, result.Added)
	assert.Equal(t, 1, result.Skipped)

	rec = env.do(t, http.MethodGet, "/api/v1/decks/"+result.DeckID+"/export?use_x=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var export decklist.DeckExport
	decodeData(t, rec, &export)
	assert.Equal(t, "// Imported\nDeck\n2x Ember Drake\n\nStage\n1x Moonlit Grove\n", export.Content)
	assert.Equal(t, "Imported.txt", export.Filename)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/decks/import", handlers.ImportDeckRequest{Content: "1 Ember Drake", Name: "Imported"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/decks/import", handlers.ImportDeckRequest{Content: "nonsense"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/decks/import", handlers.ImportDeckRequest{}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/decks/nope/export", nil).Code)
}

func TestJSONContentType(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks", bytes.NewReader([]byte(`{"name":"x"}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, &Config{Port: 0, RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	unlimited := newTestEnv(t, &Config{Port: 0})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, unlimited.do(t, http.MethodGet, "/health", nil).Code)
	}
}

func mustCard(t *testing.T, env *testEnv, id int) *cards.Card {
	t.Helper()
	card, ok := env.manager.Catalog().Get(id)
	require.True(t, ok)
	return card
}
