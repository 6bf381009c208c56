package handlers

import (
	"net/http"

	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/cards"
)

// CardHandler handles catalog requests.
type CardHandler struct {
	catalog *cards.Catalog
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(catalog *cards.Catalog) *CardHandler {
	return &CardHandler{catalog: catalog}
}

// SearchCards filters the catalog by the q query parameter.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.catalog.Search(r.URL.Query().Get("q")))
}

// GetCard returns a single card by ID.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, ok := cardParam(w, r, h.catalog)
	if !ok {
		return
	}
	response.Success(w, card)
}
