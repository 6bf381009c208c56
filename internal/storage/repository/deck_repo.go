package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DeckRow is a deck header as stored in the decks table.
type DeckRow struct {
	ID         string
	Name       string
	Position   int
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// DeckCardRow is one (deck, card, board) quantity.
type DeckCardRow struct {
	DeckID   string
	CardID   int
	Board    string
	Quantity int
}

// DeckRepository handles database operations for decks.
type DeckRepository interface {
	// Upsert inserts a deck or updates its name and position.
	Upsert(ctx context.Context, deck *DeckRow) error

	// GetByID retrieves a deck header. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*DeckRow, error)

	// List retrieves every deck ordered by position.
	List(ctx context.Context) ([]*DeckRow, error)

	// Delete removes a deck and its cards.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every deck and every deck card.
	DeleteAll(ctx context.Context) error

	// AddCard adds quantity copies of a card to a deck board. Repeated rows
	// for the same card are summed.
	AddCard(ctx context.Context, card *DeckCardRow) error

	// GetCards retrieves every card row of a deck ordered by board and card ID.
	GetCards(ctx context.Context, deckID string) ([]*DeckCardRow, error)

	// ClearCards removes all cards from a deck.
	ClearCards(ctx context.Context, deckID string) error
}

type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db DBTX) DeckRepository {
	return &deckRepository{db: db}
}

// Upsert inserts a deck or updates its name and position.
func (r *deckRepository) Upsert(ctx context.Context, deck *DeckRow) error {
	now := time.Now()
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = now
	}
	deck.ModifiedAt = now

	query := `
		INSERT INTO decks (id, name, position, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			position = excluded.position,
			modified_at = excluded.modified_at
	`
	_, err := r.db.ExecContext(ctx, query, deck.ID, deck.Name, deck.Position, deck.CreatedAt, deck.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert deck %s: %w", deck.ID, err)
	}
	return nil
}

// GetByID retrieves a deck header.
func (r *deckRepository) GetByID(ctx context.Context, id string) (*DeckRow, error) {
	query := `SELECT id, name, position, created_at, modified_at FROM decks WHERE id = ?`

	deck := &DeckRow{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&deck.ID,
		&deck.Name,
		&deck.Position,
		&deck.CreatedAt,
		&deck.ModifiedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return deck, nil
}

// List retrieves every deck ordered by position.
func (r *deckRepository) List(ctx context.Context) ([]*DeckRow, error) {
	query := `SELECT id, name, position, created_at, modified_at FROM decks ORDER BY position, created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var decks []*DeckRow
	for rows.Next() {
		deck := &DeckRow{}
		if err := rows.Scan(&deck.ID, &deck.Name, &deck.Position, &deck.CreatedAt, &deck.ModifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return decks, nil
}

// Delete removes a deck and its cards.
func (r *deckRepository) Delete(ctx context.Context, id string) error {
	if err := r.ClearCards(ctx, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

// DeleteAll removes every deck and every deck card.
func (r *deckRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_cards`); err != nil {
		return fmt.Errorf("failed to clear deck cards: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM decks`); err != nil {
		return fmt.Errorf("failed to clear decks: %w", err)
	}
	return nil
}

// AddCard adds copies of a card to a deck board.
func (r *deckRepository) AddCard(ctx context.Context, card *DeckCardRow) error {
	query := `
		INSERT INTO deck_cards (deck_id, card_id, board, quantity)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(deck_id, card_id, board) DO UPDATE SET
			quantity = deck_cards.quantity + excluded.quantity
	`
	_, err := r.db.ExecContext(ctx, query, card.DeckID, card.CardID, card.Board, card.Quantity)
	if err != nil {
		return fmt.Errorf("failed to add card %d to deck %s: %w", card.CardID, card.DeckID, err)
	}
	return nil
}

// GetCards retrieves every card row of a deck.
func (r *deckRepository) GetCards(ctx context.Context, deckID string) ([]*DeckCardRow, error) {
	query := `
		SELECT deck_id, card_id, board, quantity
		FROM deck_cards
		WHERE deck_id = ?
		ORDER BY board, card_id
	`

	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cards []*DeckCardRow
	for rows.Next() {
		card := &DeckCardRow{}
		if err := rows.Scan(&card.DeckID, &card.CardID, &card.Board, &card.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck cards: %w", err)
	}
	return cards, nil
}

// ClearCards removes all cards from a deck.
func (r *deckRepository) ClearCards(ctx context.Context, deckID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("failed to clear deck cards: %w", err)
	}
	return nil
}
