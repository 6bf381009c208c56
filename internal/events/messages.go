package events

// Event types.
const (
	TypeDeckCreated       = "deck:created"
	TypeDeckDeleted       = "deck:deleted"
	TypeDeckSaved         = "deck:saved"
	TypeDeckSelected      = "deck:selected"
	TypeSessionStarted    = "session:started"
	TypeSessionDiscarded  = "session:discarded"
	TypeGameplayStarted   = "gameplay:started"
	TypeCardDrawn         = "card:drawn"
	TypeCollectionChanged = "collection:changed"
)

// DeckEvent is the payload for deck:created, deck:deleted and deck:selected.
type DeckEvent struct {
	DeckID string `json:"deckId"`
	Name   string `json:"name"`
}

// DeckSavedEvent is the payload for deck:saved, sent after an editing
// session is committed.
type DeckSavedEvent struct {
	DeckID     string `json:"deckId"`
	Name       string `json:"name"`
	MainCount  int    `json:"mainCount"`
	StageCount int    `json:"stageCount"`
	// Persisted is false when the commit succeeded but the save failed.
	Persisted bool `json:"persisted"`
}

// SessionEvent is the payload for session:started and session:discarded.
type SessionEvent struct {
	DeckID string `json:"deckId"`
	// Replaced is set when starting a session dropped an uncommitted one.
	Replaced string `json:"replaced,omitempty"`
}

// GameplayEvent is the payload for gameplay:started.
type GameplayEvent struct {
	DeckID    string `json:"deckId"`
	Remaining int    `json:"remaining"`
}

// CardDrawnEvent is the payload for card:drawn.
type CardDrawnEvent struct {
	DeckID    string `json:"deckId"`
	CardID    int    `json:"cardId"`
	Title     string `json:"title"`
	Remaining int    `json:"remaining"`
}

// CollectionChangedEvent is the payload for collection:changed. CardID is 0
// when the whole collection was replaced.
type CollectionChangedEvent struct {
	CardID int `json:"cardId,omitempty"`
	Count  int `json:"count"`
}
