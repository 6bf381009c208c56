package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
)

// CardRepository handles database operations for the card catalog.
type CardRepository interface {
	// Upsert inserts or replaces a card definition by ID.
	Upsert(ctx context.Context, card *cards.Card) error

	// GetByID retrieves a card. Returns nil if not found.
	GetByID(ctx context.Context, id int) (*cards.Card, error)

	// LoadAll retrieves every card ordered by ID. Satisfies cards.Loader.
	LoadAll(ctx context.Context) ([]*cards.Card, error)

	// TitleIndex maps every stored title to its ID.
	TitleIndex(ctx context.Context) (map[string]int, error)

	// Count returns the number of stored cards.
	Count(ctx context.Context) (int, error)
}

type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db DBTX) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `id, title, description, card_type, faction, cost, attack, health, level, art_ref`

// Upsert inserts or replaces a card definition by ID.
func (r *cardRepository) Upsert(ctx context.Context, card *cards.Card) error {
	query := `
		INSERT INTO cards (` + cardColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			card_type = excluded.card_type,
			faction = excluded.faction,
			cost = excluded.cost,
			attack = excluded.attack,
			health = excluded.health,
			level = excluded.level,
			art_ref = excluded.art_ref,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		card.ID,
		card.Title,
		card.Description,
		string(card.Type),
		string(card.Faction),
		card.Cost,
		card.Attack,
		card.Health,
		card.Level,
		card.ArtRef,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card %d (%s): %w", card.ID, card.Title, err)
	}
	return nil
}

// GetByID retrieves a card.
func (r *cardRepository) GetByID(ctx context.Context, id int) (*cards.Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return card, nil
}

// LoadAll retrieves every card ordered by ID.
func (r *cardRepository) LoadAll(ctx context.Context) ([]*cards.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var all []*cards.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		all = append(all, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return all, nil
}

// TitleIndex maps every stored title to its ID.
func (r *cardRepository) TitleIndex(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("failed to query card titles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	index := make(map[string]int)
	for rows.Next() {
		var id int
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan card title: %w", err)
		}
		index[title] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card titles: %w", err)
	}
	return index, nil
}

// Count returns the number of stored cards.
func (r *cardRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (*cards.Card, error) {
	var (
		card     cards.Card
		cardType string
		faction  string
	)
	err := row.Scan(
		&card.ID,
		&card.Title,
		&card.Description,
		&cardType,
		&faction,
		&card.Cost,
		&card.Attack,
		&card.Health,
		&card.Level,
		&card.ArtRef,
	)
	if err != nil {
		return nil, err
	}

	if card.Type, err = cards.ParseType(cardType); err != nil {
		log.Printf("[CardRepository] Card %d: %v", card.ID, err)
	}
	if card.Faction, err = cards.ParseFaction(faction); err != nil {
		log.Printf("[CardRepository] Card %d: %v", card.ID, err)
	}
	return &card, nil
}
