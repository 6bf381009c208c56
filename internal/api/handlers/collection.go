package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
)

// CollectionHandler handles collection requests.
type CollectionHandler struct {
	manager *deckmanager.Manager
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(manager *deckmanager.Manager) *CollectionHandler {
	return &CollectionHandler{manager: manager}
}

// CollectionEntry is one owned card.
type CollectionEntry struct {
	Card  *cards.Card `json:"card"`
	Count int         `json:"count"`
}

// CollectionResponse is the player's collection.
type CollectionResponse struct {
	Entries     []CollectionEntry `json:"entries"`
	UniqueCards int               `json:"unique_cards"`
	TotalCards  int               `json:"total_cards"`
}

// OwnedResponse reports the owned count of one card after a change.
type OwnedResponse struct {
	CardID    int  `json:"card_id"`
	Count     int  `json:"count"`
	Persisted bool `json:"persisted"`
}

// CountRequest carries a count or delta.
type CountRequest struct {
	Count int `json:"count"`
}

// GetCollection returns every owned card sorted by title.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, _ *http.Request) {
	entries := h.manager.CollectionEntries()
	resp := CollectionResponse{Entries: make([]CollectionEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, CollectionEntry{Card: e.Card, Count: e.Count})
		resp.TotalCards += e.Count
	}
	resp.UniqueCards = len(entries)
	response.Success(w, resp)
}

// SetCount sets the owned count of a card.
func (h *CollectionHandler) SetCount(w http.ResponseWriter, r *http.Request) {
	card, ok := cardParam(w, r, h.manager.Catalog())
	if !ok {
		return
	}
	var req CountRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Count < 0 {
		response.BadRequest(w, errors.New("count cannot be negative"))
		return
	}

	if err := h.manager.SetOwnedCount(card, req.Count); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, r, card)
}

// AddCards grants copies of a card. The count defaults to 1.
func (h *CollectionHandler) AddCards(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.manager.GrantCards)
}

// RemoveCards spends copies of a card. The count defaults to 1.
func (h *CollectionHandler) RemoveCards(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.manager.SpendCards)
}

func (h *CollectionHandler) change(w http.ResponseWriter, r *http.Request, apply func(*cards.Card, int) error) {
	card, ok := cardParam(w, r, h.manager.Catalog())
	if !ok {
		return
	}
	req := CountRequest{Count: 1}
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Count <= 0 {
		response.BadRequest(w, errors.New("count must be positive"))
		return
	}

	if err := apply(card, req.Count); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, r, card)
}

func (h *CollectionHandler) respond(w http.ResponseWriter, r *http.Request, card *cards.Card) {
	persisted := persist(r.Context(), h.manager)
	response.Success(w, OwnedResponse{
		CardID:    card.ID,
		Count:     h.manager.OwnedCount(card),
		Persisted: persisted,
	})
}
