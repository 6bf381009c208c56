package decklist

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
)

// Editor is the part of the deck manager an import drives. Every card goes
// through an editing session so the normal deck rules apply.
type Editor interface {
	Catalog() *cards.Catalog
	CreateDeck(name string) (*deck.Deck, error)
	DeleteDeck(id string) error
	StartEditingSession(id string) error
	AddCardToSession(card *cards.Card) error
	CommitEditingSession(ctx context.Context, newName string) error
	DiscardEditingSession()
	GetDeck(id string) *deck.Deck
}

// ImportResult reports what an import created.
type ImportResult struct {
	Deck     *deck.Deck `json:"-"`
	DeckID   string     `json:"deckId"`
	Name     string     `json:"name"`
	Added    int        `json:"added"`
	Skipped  int        `json:"skipped"`
	Warnings []string   `json:"warnings"`
}

// Import creates a new deck from a deck list. name overrides the list's own
// name; when both are empty the deck gets an untitled name. Unknown titles
// and copies the rules reject are skipped with a warning. The new deck is
// committed through the editor, which persists it. A failed save keeps the
// deck in memory and is not treated as an import failure.
func Import(ctx context.Context, editor Editor, input, name string) (*ImportResult, error) {
	parsed, err := Parse(input)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = parsed.Name
	}

	d, err := editor.CreateDeck(name)
	if err != nil {
		return nil, err
	}
	if err := editor.StartEditingSession(d.ID); err != nil {
		_ = editor.DeleteDeck(d.ID)
		return nil, err
	}

	result := &ImportResult{DeckID: d.ID, Name: d.Name, Warnings: parsed.Warnings}
	catalog := editor.Catalog()

	for _, line := range parsed.Lines {
		card, ok := catalog.FindByTitle(line.Title)
		if !ok {
			result.Skipped += line.Quantity
			result.Warnings = append(result.Warnings, fmt.Sprintf("Line %d: card %q not found", line.LineNo, line.Title))
			continue
		}
		if deck.PartitionFor(card) != line.Partition {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Line %d: %s belongs in the %s deck", line.LineNo, card.Title, deck.PartitionFor(card)))
		}

		for i := 0; i < line.Quantity; i++ {
			if err := editor.AddCardToSession(card); err != nil {
				skipped := line.Quantity - i
				result.Skipped += skipped
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Line %d: skipped %d of %s: %v", line.LineNo, skipped, card.Title, err))
				break
			}
			result.Added++
		}
	}

	if err := editor.CommitEditingSession(ctx, d.Name); err != nil && !errors.Is(err, deckmanager.ErrNotPersisted) {
		editor.DiscardEditingSession()
		_ = editor.DeleteDeck(d.ID)
		return nil, fmt.Errorf("failed to save imported deck: %w", err)
	}

	result.Deck = editor.GetDeck(d.ID)
	log.Printf("[DeckList] Imported %q: %d cards added, %d skipped", d.Name, result.Added, result.Skipped)
	return result, nil
}
