package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deckkeeper/internal/api/handlers"
	"github.com/ramonehamilton/deckkeeper/internal/api/response"
	"github.com/ramonehamilton/deckkeeper/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		cardHandler := handlers.NewCardHandler(s.manager.Catalog())
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.SearchCards)
			r.Get("/{cardID}", cardHandler.GetCard)
		})

		collectionHandler := handlers.NewCollectionHandler(s.manager)
		r.Route("/collection", func(r chi.Router) {
			r.Get("/", collectionHandler.GetCollection)
			r.Put("/{cardID}", collectionHandler.SetCount)
			r.Post("/{cardID}/add", collectionHandler.AddCards)
			r.Post("/{cardID}/remove", collectionHandler.RemoveCards)
		})

		deckHandler := handlers.NewDeckHandler(s.manager)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/selected", deckHandler.GetSelectedDeck)
			r.Put("/selected", deckHandler.SetSelectedDeck)
			r.Post("/import", deckHandler.ImportDeck)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
			r.Get("/{deckID}/export", deckHandler.ExportDeck)
		})

		sessionHandler := handlers.NewSessionHandler(s.manager)
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/", sessionHandler.StartSession)
			r.Delete("/", sessionHandler.DiscardSession)
			r.Post("/commit", sessionHandler.CommitSession)
			r.Get("/can-add/{cardID}", sessionHandler.CanAddCard)
			r.Post("/cards/{cardID}", sessionHandler.AddCard)
			r.Delete("/cards/{cardID}", sessionHandler.RemoveCard)
		})

		gameplayHandler := handlers.NewGameplayHandler(s.manager)
		r.Route("/gameplay", func(r chi.Router) {
			r.Get("/", gameplayHandler.GetGameplay)
			r.Post("/", gameplayHandler.SetActiveDeck)
			r.Post("/draw", gameplayHandler.Draw)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "deckkeeper-api",
		"version": version.Get(),
		"cards":   s.manager.Catalog().Len(),
		"decks":   len(s.manager.GetAllDecks()),
		"clients": s.wsHub.ClientCount(),
	})
}
