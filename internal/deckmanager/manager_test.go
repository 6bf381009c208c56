package deckmanager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deckkeeper/internal/collection"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/savefile"
)

func TestLoad_FirstRunSeedsCollection(t *testing.T) {
	store := &memStore{}
	m := newTestManager(t, WithStore(store), WithDefaultCopies(3))

	result, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Seeded)
	assert.Equal(t, 0, result.Decks)

	assert.Equal(t, 3, m.OwnedCount(mustCard(t, m, 1)))
	assert.Equal(t, m.Catalog().Len(), len(m.CollectionEntries()))
	assert.Equal(t, 1, store.collectionSaves, "seeded collection is saved")
}

func TestLoad_RestoresState(t *testing.T) {
	store := &memStore{
		decks: &savefile.DeckSetDocument{
			AllDecks: []savefile.DeckRecord{
				{DeckName: "Saved", UniqueID: "d1", MainDeckCardIDs: []int{1, 999}, MainDeckCardCounts: []int{2, 1}},
				{DeckName: "Other", UniqueID: "d2"},
			},
			CurrentSelectedDeckID: "d2",
		},
		collection: &savefile.CollectionDocument{CardIDs: []int{1, 2}, CardCounts: []int{4, 1}},
	}
	m := newTestManager(t, WithStore(store))

	result, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Seeded)
	assert.Equal(t, 2, result.Decks)
	assert.Equal(t, 1, result.Report.UnknownCards)

	saved := m.GetDeck("d1")
	require.NotNil(t, saved)
	assert.Equal(t, 2, saved.Total(deck.PartitionMain))
	assert.Equal(t, "d2", m.SelectedDeckID())
	assert.Equal(t, 4, m.OwnedCount(mustCard(t, m, 1)))
}

func TestLoad_SelectionFallsBackToFirstDeck(t *testing.T) {
	store := &memStore{
		decks: &savefile.DeckSetDocument{
			AllDecks:              []savefile.DeckRecord{{DeckName: "Only", UniqueID: "d1"}},
			CurrentSelectedDeckID: "gone",
		},
		collection: &savefile.CollectionDocument{},
	}
	m := newTestManager(t, WithStore(store))

	_, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "d1", m.SelectedDeckID())
}

func TestLoad_CorruptDocumentsResetToEmpty(t *testing.T) {
	corrupt := errors.New("unexpected end of JSON input")
	store := &memStore{loadDecksErr: corrupt, loadCollectionErr: corrupt}
	m := newTestManager(t, WithStore(store))

	_, err := m.CreateDeck("Before load")
	require.NoError(t, err)

	result, err := m.Load(context.Background())
	assert.ErrorIs(t, err, corrupt)
	assert.False(t, result.Seeded, "a corrupt collection is reset, not reseeded")
	assert.Empty(t, m.GetAllDecks())
	assert.Empty(t, m.CollectionEntries())
}

func TestLoad_WithoutStore(t *testing.T) {
	m := newTestManager(t)
	result, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoadResult{}, result)
}

func TestSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	m := newTestManager(t, WithStore(store))
	_, err := m.Load(ctx)
	require.NoError(t, err)

	d := buildDeck(t, m, "Persisted", map[int]int{1: 2, 21: 1})
	require.NoError(t, m.SetSelectedDeck(d.ID))
	require.NoError(t, m.SetOwnedCount(mustCard(t, m, 2), 0))
	require.NoError(t, m.Save(ctx))

	reloaded := New(m.Catalog(), WithStore(store))
	_, err = reloaded.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, m.GetAllDecks(), reloaded.GetAllDecks())
	assert.Equal(t, m.SelectedDeckID(), reloaded.SelectedDeckID())
	assert.Equal(t, m.CollectionEntries(), reloaded.CollectionEntries())
}

func TestCollectionOperations(t *testing.T) {
	m := newTestManager(t)
	card := mustCard(t, m, 7)

	require.NoError(t, m.GrantCards(card, 3))
	assert.Equal(t, 3, m.OwnedCount(card))
	assert.Error(t, m.GrantCards(card, 0))

	assert.ErrorIs(t, m.SpendCards(card, 4), ErrNotEnoughCopies)
	require.NoError(t, m.SpendCards(card, 3))
	assert.Equal(t, 0, m.OwnedCount(card))
	assert.Empty(t, m.CollectionEntries(), "spending to zero removes the entry")

	require.NoError(t, m.SetOwnedCount(card, 2))
	require.NoError(t, m.SetOwnedCount(card, -1))
	assert.Equal(t, 0, m.OwnedCount(card))

	assert.ErrorIs(t, m.SetOwnedCount(nil, 1), ErrNilCard)
	assert.ErrorIs(t, m.GrantCards(nil, 1), ErrNilCard)
	assert.ErrorIs(t, m.SpendCards(nil, 1), ErrNilCard)
	assert.Equal(t, 0, m.OwnedCount(nil))

	m.ResetCollection(1)
	assert.Len(t, m.CollectionEntries(), m.Catalog().Len())
}

func TestCollectionRoundTripThroughCodec(t *testing.T) {
	m := newTestManager(t)
	c := collection.New()
	for _, card := range m.Catalog().LoadAll()[:5] {
		c.SetCount(card, card.ID)
	}

	decoded, report := savefile.DecodeCollection(savefile.EncodeCollection(c), m.Catalog())
	assert.Zero(t, report.Dropped())
	assert.Equal(t, c.Counts(), decoded.Counts())
}

func TestManager_ConcurrentUse(t *testing.T) {
	m := newTestManager(t)
	d := editing(t, m, "Shared")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = m.AddCardToSession(mustCard(t, m, (i+j)%20+1))
				_ = m.GetAllDecks()
				_ = m.CanAddCard(mustCard(t, m, 1), false)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, deck.MaxMainDeckSize, m.GetSessionTotalCount(true))
	require.NoError(t, m.CommitEditingSession(context.Background(), "Shared"))
	assert.Equal(t, deck.MaxMainDeckSize, m.GetDeck(d.ID).Total(deck.PartitionMain))
}
