package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/decklist"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
)

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	manager *deckmanager.Manager
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(manager *deckmanager.Manager) *DeckHandler {
	return &DeckHandler{manager: manager}
}

// DeckResponse is a deck plus whether the change reached storage.
type DeckResponse struct {
	Deck      *DeckView `json:"deck"`
	Persisted bool      `json:"persisted"`
}

// GetDecks returns every deck in creation order.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, _ *http.Request) {
	selected := h.manager.SelectedDeckID()
	all := h.manager.GetAllDecks()

	items := make([]DeckListItem, 0, len(all))
	for _, d := range all {
		v := toDeckView(d, selected)
		items = append(items, DeckListItem{
			ID:         v.ID,
			Name:       v.Name,
			MainCount:  v.MainCount,
			StageCount: v.StageCount,
			Selected:   v.Selected,
		})
	}
	response.Success(w, items)
}

// CreateDeckRequest represents a request to create a deck.
type CreateDeckRequest struct {
	Name string `json:"name"`
}

// CreateDeck creates an empty deck. An empty name gets an untitled name.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	d, err := h.manager.CreateDeck(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	persisted := persist(r.Context(), h.manager)
	response.Created(w, DeckResponse{Deck: toDeckView(d, h.manager.SelectedDeckID()), Persisted: persisted})
}

// GetDeck returns a single deck by ID.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	d := h.manager.GetDeck(chi.URLParam(r, "deckID"))
	if d == nil {
		writeError(w, deckmanager.ErrDeckNotFound)
		return
	}
	response.Success(w, toDeckView(d, h.manager.SelectedDeckID()))
}

// DeleteDeck removes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteDeck(chi.URLParam(r, "deckID")); err != nil {
		writeError(w, err)
		return
	}
	persist(r.Context(), h.manager)
	response.NoContent(w)
}

// GetSelectedDeck returns the deck selected for play.
func (h *DeckHandler) GetSelectedDeck(w http.ResponseWriter, _ *http.Request) {
	id := h.manager.SelectedDeckID()
	d := h.manager.GetDeck(id)
	if d == nil {
		response.NotFound(w, errors.New("no deck selected"))
		return
	}
	response.Success(w, toDeckView(d, id))
}

// SelectDeckRequest represents a request to change the selected deck.
type SelectDeckRequest struct {
	DeckID string `json:"deck_id"`
}

// SetSelectedDeck changes the deck selected for play.
func (h *DeckHandler) SetSelectedDeck(w http.ResponseWriter, r *http.Request) {
	var req SelectDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.DeckID == "" {
		response.BadRequest(w, errors.New("deck_id is required"))
		return
	}

	if err := h.manager.SetSelectedDeck(req.DeckID); err != nil {
		writeError(w, err)
		return
	}

	persisted := persist(r.Context(), h.manager)
	response.Success(w, DeckResponse{Deck: toDeckView(h.manager.GetDeck(req.DeckID), req.DeckID), Persisted: persisted})
}

// ExportDeck renders a deck as a text list. Query parameters: use_x=true
// writes "2x Title"; include_name=false drops the name line.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	d := h.manager.GetDeck(chi.URLParam(r, "deckID"))
	if d == nil {
		writeError(w, deckmanager.ErrDeckNotFound)
		return
	}

	q := r.URL.Query()
	export, err := decklist.Export(d, &decklist.ExportOptions{
		IncludeName: !strings.EqualFold(q.Get("include_name"), "false"),
		UseX:        strings.EqualFold(q.Get("use_x"), "true"),
	})
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, export)
}

// ImportDeckRequest represents a deck list import.
type ImportDeckRequest struct {
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ImportDeck creates a deck from a text list.
func (h *DeckHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	var req ImportDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.BadRequest(w, errors.New("content is required"))
		return
	}

	result, err := decklist.Import(r.Context(), h.manager, req.Content, req.Name)
	if err != nil {
		if errors.Is(err, deckmanager.ErrNameTaken) {
			writeError(w, err)
			return
		}
		response.BadRequest(w, err)
		return
	}
	response.Created(w, result)
}
