package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
)

// SessionHandler drives the single deck editing session.
type SessionHandler struct {
	manager *deckmanager.Manager
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *deckmanager.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// SessionResponse is the working copy being edited.
type SessionResponse struct {
	Draft        *DeckView `json:"draft"`
	OriginalName string    `json:"original_name"`
}

// StartSessionRequest names the deck to edit.
type StartSessionRequest struct {
	DeckID string `json:"deck_id"`
}

// StartSession opens an editing session, replacing any open one.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.DeckID == "" {
		response.BadRequest(w, errors.New("deck_id is required"))
		return
	}

	if err := h.manager.StartEditingSession(req.DeckID); err != nil {
		writeError(w, err)
		return
	}
	h.GetSession(w, r)
}

// GetSession returns the open session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, _ *http.Request) {
	view, ok := h.manager.Session()
	if !ok {
		writeError(w, deckmanager.ErrNoSession)
		return
	}
	response.Success(w, SessionResponse{
		Draft:        toDeckView(view.Draft, ""),
		OriginalName: view.OriginalName,
	})
}

// AddCard adds one copy of a card to the working copy.
func (h *SessionHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	card, ok := cardParam(w, r, h.manager.Catalog())
	if !ok {
		return
	}
	if err := h.manager.AddCardToSession(card); err != nil {
		writeError(w, err)
		return
	}
	h.GetSession(w, r)
}

// RemoveCard removes one copy of a card from the working copy.
func (h *SessionHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	card, ok := cardParam(w, r, h.manager.Catalog())
	if !ok {
		return
	}
	if err := h.manager.RemoveCardFromSession(card); err != nil {
		writeError(w, err)
		return
	}
	h.GetSession(w, r)
}

// CanAddResponse reports whether a card may be added.
type CanAddResponse struct {
	CardID  int  `json:"card_id"`
	CanAdd  bool `json:"can_add"`
	InDraft int  `json:"in_draft"`
}

// CanAddCard checks a card against the deck rules without changing anything.
// The card's own partition is checked unless stage=true|false is given.
func (h *SessionHandler) CanAddCard(w http.ResponseWriter, r *http.Request) {
	card, ok := cardParam(w, r, h.manager.Catalog())
	if !ok {
		return
	}

	toStage := deck.PartitionFor(card) == deck.PartitionStage
	switch r.URL.Query().Get("stage") {
	case "true":
		toStage = true
	case "false":
		toStage = false
	}

	response.Success(w, CanAddResponse{
		CardID:  card.ID,
		CanAdd:  h.manager.CanAddCard(card, toStage),
		InDraft: h.manager.GetSessionCardCount(card),
	})
}

// CommitRequest carries the deck name to save under.
type CommitRequest struct {
	Name string `json:"name"`
}

// CommitSession writes the working copy back to the deck and saves.
// An empty name keeps the deck's current name.
func (h *SessionHandler) CommitSession(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	view, ok := h.manager.Session()
	if !ok {
		writeError(w, deckmanager.ErrNoSession)
		return
	}
	name := req.Name
	if name == "" {
		name = view.OriginalName
	}

	persisted := true
	if err := h.manager.CommitEditingSession(r.Context(), name); err != nil {
		if !errors.Is(err, deckmanager.ErrNotPersisted) {
			writeError(w, err)
			return
		}
		persisted = false
	}

	d := h.manager.GetDeck(view.Draft.ID)
	if d == nil {
		writeError(w, deckmanager.ErrDeckNotFound)
		return
	}
	response.Success(w, DeckResponse{Deck: toDeckView(d, h.manager.SelectedDeckID()), Persisted: persisted})
}

// DiscardSession drops the working copy.
func (h *SessionHandler) DiscardSession(w http.ResponseWriter, _ *http.Request) {
	h.manager.DiscardEditingSession()
	response.NoContent(w)
}
