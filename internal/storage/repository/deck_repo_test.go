package repository

import (
	"context"
	"testing"
)

func TestDeckRepository_UpsertAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	for i, name := range []string{"Aggro", "Control"} {
		deck := &DeckRow{ID: name + "-id", Name: name, Position: i}
		if err := repo.Upsert(ctx, deck); err != nil {
			t.Fatalf("failed to upsert deck: %v", err)
		}
	}

	// Rename keeps the row and its position.
	if err := repo.Upsert(ctx, &DeckRow{ID: "Aggro-id", Name: "Aggro v2", Position: 0}); err != nil {
		t.Fatalf("failed to rename deck: %v", err)
	}

	decks, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("failed to list decks: %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("expected 2 decks, got %d", len(decks))
	}
	if decks[0].Name != "Aggro v2" || decks[1].Name != "Control" {
		t.Errorf("unexpected deck order: %s, %s", decks[0].Name, decks[1].Name)
	}

	got, err := repo.GetByID(ctx, "Control-id")
	if err != nil {
		t.Fatalf("failed to get deck: %v", err)
	}
	if got == nil || got.Position != 1 {
		t.Errorf("expected Control at position 1, got %+v", got)
	}

	missing, err := repo.GetByID(ctx, "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown deck")
	}
}

func TestDeckRepository_Cards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &DeckRow{ID: "d1", Name: "Deck"}); err != nil {
		t.Fatalf("failed to upsert deck: %v", err)
	}

	rows := []*DeckCardRow{
		{DeckID: "d1", CardID: 2, Board: "main", Quantity: 1},
		{DeckID: "d1", CardID: 2, Board: "main", Quantity: 1},
		{DeckID: "d1", CardID: 1, Board: "main", Quantity: 2},
		{DeckID: "d1", CardID: 9, Board: "stage", Quantity: 1},
	}
	for _, row := range rows {
		if err := repo.AddCard(ctx, row); err != nil {
			t.Fatalf("failed to add card: %v", err)
		}
	}

	cards, err := repo.GetCards(ctx, "d1")
	if err != nil {
		t.Fatalf("failed to get cards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(cards))
	}
	if cards[0].CardID != 1 || cards[1].CardID != 2 || cards[1].Quantity != 2 {
		t.Errorf("expected repeated rows to be summed and ordered, got %+v %+v", cards[0], cards[1])
	}
	if cards[2].Board != "stage" {
		t.Errorf("expected stage row last, got %s", cards[2].Board)
	}

	if err := repo.Delete(ctx, "d1"); err != nil {
		t.Fatalf("failed to delete deck: %v", err)
	}
	cards, err = repo.GetCards(ctx, "d1")
	if err != nil {
		t.Fatalf("failed to get cards: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("expected cards removed with deck, got %d", len(cards))
	}
}

func TestDeckRepository_DeleteAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	_ = repo.Upsert(ctx, &DeckRow{ID: "a", Name: "A"})
	_ = repo.AddCard(ctx, &DeckCardRow{DeckID: "a", CardID: 1, Board: "main", Quantity: 1})

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("failed to delete all: %v", err)
	}
	decks, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("failed to list decks: %v", err)
	}
	if len(decks) != 0 {
		t.Errorf("expected no decks, got %d", len(decks))
	}
}
