package storage

import (
	"context"
	"errors"

	"github.com/ramonehamilton/deckkeeper/internal/savefile"
)

// ErrNotFound is returned by a Store when nothing has been saved yet.
var ErrNotFound = errors.New("no saved data")

// Store persists the two save documents. Implementations replace the whole
// document on every save.
type Store interface {
	LoadDeckSet(ctx context.Context) (*savefile.DeckSetDocument, error)
	SaveDeckSet(ctx context.Context, doc *savefile.DeckSetDocument) error
	LoadCollection(ctx context.Context) (*savefile.CollectionDocument, error)
	SaveCollection(ctx context.Context, doc *savefile.CollectionDocument) error
	Close() error
}

// alignedPairs walks index-aligned id/count arrays, skipping the unaligned
// tail and non-positive counts.
func alignedPairs(ids, counts []int, fn func(id, count int) error) error {
	n := min(len(ids), len(counts))
	for i := 0; i < n; i++ {
		if counts[i] <= 0 {
			continue
		}
		if err := fn(ids[i], counts[i]); err != nil {
			return err
		}
	}
	return nil
}
