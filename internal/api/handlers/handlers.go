// Package handlers implements the REST endpoints on top of the deck manager.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
)

// errorReasons maps deck manager errors onto statuses and reason codes.
// Order matters only for errors wrapping more than one sentinel.
var errorReasons = []struct {
	target error
	status int
	reason string
}{
	{deckmanager.ErrDeckNotFound, http.StatusNotFound, "deck_not_found"},
	{deckmanager.ErrEmptyName, http.StatusBadRequest, "empty_name"},
	{deckmanager.ErrNilCard, http.StatusBadRequest, "nil_card"},
	{deckmanager.ErrNameTaken, http.StatusConflict, "name_taken"},
	{deckmanager.ErrRuleViolation, http.StatusConflict, "rule_violation"},
	{deckmanager.ErrNoSession, http.StatusConflict, "no_session"},
	{deckmanager.ErrCardNotInSession, http.StatusConflict, "card_not_in_session"},
	{deckmanager.ErrNoGameplayDeck, http.StatusConflict, "no_gameplay_deck"},
	{deckmanager.ErrDeckEmpty, http.StatusConflict, "deck_empty"},
	{deckmanager.ErrNotEnoughCopies, http.StatusConflict, "not_enough_copies"},
}

func writeError(w http.ResponseWriter, err error) {
	for _, e := range errorReasons {
		if errors.Is(err, e.target) {
			response.Reason(w, e.status, e.reason, err)
			return
		}
	}
	response.InternalError(w, err)
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// cardParam resolves the {cardID} URL parameter against the catalog and
// writes the error response itself when it cannot.
func cardParam(w http.ResponseWriter, r *http.Request, catalog *cards.Catalog) (*cards.Card, bool) {
	raw := chi.URLParam(r, "cardID")
	id, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(w, fmt.Errorf("invalid card ID %q", raw))
		return nil, false
	}
	card, ok := catalog.Get(id)
	if !ok {
		response.NotFound(w, fmt.Errorf("card %d not found", id))
		return nil, false
	}
	return card, true
}

// persist saves decks and collection after a mutation that does not save on
// its own. A failure is logged and reported to the client, never rolled back.
func persist(ctx context.Context, m *deckmanager.Manager) bool {
	if err := m.Save(ctx); err != nil {
		log.Printf("[API] Change kept in memory but not saved: %v", err)
		return false
	}
	return true
}
