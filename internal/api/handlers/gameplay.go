package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
)

// GameplayHandler handles the in-play deck snapshot.
type GameplayHandler struct {
	manager *deckmanager.Manager
}

// NewGameplayHandler creates a new GameplayHandler.
func NewGameplayHandler(manager *deckmanager.Manager) *GameplayHandler {
	return &GameplayHandler{manager: manager}
}

// GameplayRequest names the deck to play. An empty ID uses the selected deck.
type GameplayRequest struct {
	DeckID string `json:"deck_id"`
}

// DrawResponse is a drawn card.
type DrawResponse struct {
	Card      *cards.Card `json:"card"`
	Remaining int         `json:"remaining"`
}

// SetActiveDeck snapshots a deck for play.
func (h *GameplayHandler) SetActiveDeck(w http.ResponseWriter, r *http.Request) {
	var req GameplayRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.DeckID == "" {
		req.DeckID = h.manager.SelectedDeckID()
	}
	if req.DeckID == "" {
		response.BadRequest(w, errors.New("deck_id is required when no deck is selected"))
		return
	}

	if err := h.manager.SetActiveGameplayDeck(req.DeckID); err != nil {
		writeError(w, err)
		return
	}
	h.GetGameplay(w, r)
}

// GetGameplay returns what is left of the gameplay snapshot.
func (h *GameplayHandler) GetGameplay(w http.ResponseWriter, _ *http.Request) {
	d := h.manager.GameplayDeck()
	if d == nil {
		writeError(w, deckmanager.ErrNoGameplayDeck)
		return
	}
	response.Success(w, toDeckView(d, ""))
}

// Draw removes a random card from the snapshot's main deck.
func (h *GameplayHandler) Draw(w http.ResponseWriter, _ *http.Request) {
	card, err := h.manager.DrawFromMainDeck()
	if err != nil {
		writeError(w, err)
		return
	}

	remaining := 0
	if d := h.manager.GameplayDeck(); d != nil {
		remaining = d.Total(deck.PartitionMain)
	}
	response.Success(w, DrawResponse{Card: card, Remaining: remaining})
}
