package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/ramonehamilton/deckkeeper/internal/savefile"
	"github.com/ramonehamilton/deckkeeper/internal/storage/repository"
)

// Deck card boards as stored in deck_cards.board.
const (
	boardMain  = "main"
	boardStage = "stage"
)

// SQLStore keeps decks, the collection and the selected deck in SQLite.
// It can also serve the card catalog through Cards.
type SQLStore struct {
	db *DB
}

// NewSQLStore wraps an open database. The schema must already be migrated.
func NewSQLStore(db *DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore opens and migrates the database at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := Open(DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return NewSQLStore(db), nil
}

// Cards returns the card repository backed by this database.
func (s *SQLStore) Cards() repository.CardRepository {
	return repository.NewCardRepository(s.db.Conn())
}

// DB returns the underlying database.
func (s *SQLStore) DB() *DB {
	return s.db
}

// LoadDeckSet rebuilds the decks document from the decks and deck_cards tables.
func (s *SQLStore) LoadDeckSet(ctx context.Context) (*savefile.DeckSetDocument, error) {
	conn := s.db.Conn()
	settings := repository.NewSettingsRepository(conn)
	decks := repository.NewDeckRepository(conn)

	var saved bool
	if err := settings.GetTyped(ctx, repository.SettingDeckSetSaved, &saved); err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc := &savefile.DeckSetDocument{Version: savefile.CurrentVersion}
	if err := settings.GetTyped(ctx, repository.SettingSelectedDeck, &doc.CurrentSelectedDeckID); err != nil &&
		!errors.Is(err, repository.ErrSettingNotFound) {
		return nil, err
	}

	rows, err := decks.List(ctx)
	if err != nil {
		return nil, err
	}

	doc.AllDecks = make([]savefile.DeckRecord, 0, len(rows))
	for _, row := range rows {
		cards, err := decks.GetCards(ctx, row.ID)
		if err != nil {
			return nil, err
		}

		rec := savefile.DeckRecord{
			DeckName:            row.Name,
			UniqueID:            row.ID,
			MainDeckCardIDs:     []int{},
			MainDeckCardCounts:  []int{},
			StageDeckCardIDs:    []int{},
			StageDeckCardCounts: []int{},
		}
		for _, c := range cards {
			switch c.Board {
			case boardStage:
				rec.StageDeckCardIDs = append(rec.StageDeckCardIDs, c.CardID)
				rec.StageDeckCardCounts = append(rec.StageDeckCardCounts, c.Quantity)
			default:
				rec.MainDeckCardIDs = append(rec.MainDeckCardIDs, c.CardID)
				rec.MainDeckCardCounts = append(rec.MainDeckCardCounts, c.Quantity)
			}
		}
		doc.AllDecks = append(doc.AllDecks, rec)
	}

	return doc, nil
}

// SaveDeckSet replaces every stored deck with the document's decks. Decks
// keep their created_at when they already exist.
func (s *SQLStore) SaveDeckSet(ctx context.Context, doc *savefile.DeckSetDocument) error {
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		decks := repository.NewDeckRepository(tx)
		settings := repository.NewSettingsRepository(tx)

		existing, err := decks.List(ctx)
		if err != nil {
			return err
		}

		keep := make(map[string]bool, len(doc.AllDecks))
		for i, rec := range doc.AllDecks {
			if keep[rec.UniqueID] {
				log.Printf("[SQLStore] Skipping duplicate deck ID %q", rec.UniqueID)
				continue
			}
			keep[rec.UniqueID] = true

			if err := decks.Upsert(ctx, &repository.DeckRow{ID: rec.UniqueID, Name: rec.DeckName, Position: i}); err != nil {
				return err
			}
			if err := decks.ClearCards(ctx, rec.UniqueID); err != nil {
				return err
			}
			if err := addDeckCards(ctx, decks, rec.UniqueID, boardMain, rec.MainDeckCardIDs, rec.MainDeckCardCounts); err != nil {
				return err
			}
			if err := addDeckCards(ctx, decks, rec.UniqueID, boardStage, rec.StageDeckCardIDs, rec.StageDeckCardCounts); err != nil {
				return err
			}
		}

		for _, row := range existing {
			if !keep[row.ID] {
				if err := decks.Delete(ctx, row.ID); err != nil {
					return err
				}
			}
		}

		if err := settings.Set(ctx, repository.SettingSelectedDeck, doc.CurrentSelectedDeckID); err != nil {
			return err
		}
		if err := settings.Set(ctx, repository.SettingSaveFormatVersion, savefile.CurrentVersion); err != nil {
			return err
		}
		return settings.Set(ctx, repository.SettingDeckSetSaved, true)
	})
	if err != nil {
		return fmt.Errorf("failed to save deck set: %w", err)
	}
	return nil
}

func addDeckCards(ctx context.Context, decks repository.DeckRepository, deckID, board string, ids, counts []int) error {
	return alignedPairs(ids, counts, func(id, count int) error {
		return decks.AddCard(ctx, &repository.DeckCardRow{DeckID: deckID, CardID: id, Board: board, Quantity: count})
	})
}

// LoadCollection reads the collection table, ordered by card ID.
func (s *SQLStore) LoadCollection(ctx context.Context) (*savefile.CollectionDocument, error) {
	conn := s.db.Conn()
	settings := repository.NewSettingsRepository(conn)

	var saved bool
	if err := settings.GetTyped(ctx, repository.SettingCollectionSaved, &saved); err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	owned, err := repository.NewCollectionRepository(conn).GetAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(owned))
	for id := range owned {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	doc := &savefile.CollectionDocument{
		Version:    savefile.CurrentVersion,
		CardIDs:    ids,
		CardCounts: make([]int, 0, len(ids)),
	}
	for _, id := range ids {
		doc.CardCounts = append(doc.CardCounts, owned[id])
	}
	return doc, nil
}

// SaveCollection replaces the collection table.
func (s *SQLStore) SaveCollection(ctx context.Context, doc *savefile.CollectionDocument) error {
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		owned := repository.NewCollectionRepository(tx)
		if err := owned.Clear(ctx); err != nil {
			return err
		}
		err := alignedPairs(doc.CardIDs, doc.CardCounts, func(id, count int) error {
			return owned.AddCard(ctx, id, count)
		})
		if err != nil {
			return err
		}
		return repository.NewSettingsRepository(tx).Set(ctx, repository.SettingCollectionSaved, true)
	})
	if err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
