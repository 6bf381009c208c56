package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CollectionRepository handles database operations for the owned-card collection.
type CollectionRepository interface {
	// UpsertCard sets the owned quantity of a card. Quantities <= 0 delete the row.
	UpsertCard(ctx context.Context, cardID int, quantity int) error

	// AddCard adds quantity to the owned count of a card.
	AddCard(ctx context.Context, cardID int, quantity int) error

	// GetCard retrieves the quantity of a specific card, 0 when not owned.
	GetCard(ctx context.Context, cardID int) (int, error)

	// GetAll retrieves the entire collection as a map of cardID -> quantity.
	GetAll(ctx context.Context) (map[int]int, error)

	// Count returns the number of distinct owned cards.
	Count(ctx context.Context) (int, error)

	// Clear removes every row.
	Clear(ctx context.Context) error
}

type collectionRepository struct {
	db DBTX
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db DBTX) CollectionRepository {
	return &collectionRepository{db: db}
}

// UpsertCard sets the owned quantity of a card.
func (r *collectionRepository) UpsertCard(ctx context.Context, cardID int, quantity int) error {
	if quantity <= 0 {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM collection WHERE card_id = ?`, cardID); err != nil {
			return fmt.Errorf("failed to remove card %d: %w", cardID, err)
		}
		return nil
	}

	query := `
		INSERT INTO collection (card_id, quantity, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, cardID, quantity, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	return nil
}

// AddCard adds quantity to the owned count of a card.
func (r *collectionRepository) AddCard(ctx context.Context, cardID int, quantity int) error {
	if quantity <= 0 {
		return nil
	}

	query := `
		INSERT INTO collection (card_id, quantity, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			quantity = collection.quantity + excluded.quantity,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, cardID, quantity, time.Now()); err != nil {
		return fmt.Errorf("failed to add card: %w", err)
	}
	return nil
}

// GetCard retrieves the quantity of a specific card.
func (r *collectionRepository) GetCard(ctx context.Context, cardID int) (int, error) {
	var quantity int
	err := r.db.QueryRowContext(ctx, `SELECT quantity FROM collection WHERE card_id = ?`, cardID).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get card: %w", err)
	}
	return quantity, nil
}

// GetAll retrieves the entire collection.
func (r *collectionRepository) GetAll(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT card_id, quantity FROM collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	collection := make(map[int]int)
	for rows.Next() {
		var cardID, quantity int
		if err := rows.Scan(&cardID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collection[cardID] = quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection: %w", err)
	}
	return collection, nil
}

// Count returns the number of distinct owned cards.
func (r *collectionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collection`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return n, nil
}

// Clear removes every row.
func (r *collectionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM collection`); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}
