package deck

// Set is every deck the player owns, in creation order, plus the deck
// currently selected for play.
type Set struct {
	Decks          []*Deck
	SelectedDeckID string
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{Decks: make([]*Deck, 0)}
}

// Get finds a deck by ID.
func (s *Set) Get(id string) *Deck {
	for _, d := range s.Decks {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Add appends a deck.
func (s *Set) Add(d *Deck) {
	s.Decks = append(s.Decks, d)
}

// Remove deletes a deck by ID and reports whether it existed.
// Clearing the selection when the selected deck goes away is left to the caller.
func (s *Set) Remove(id string) (*Deck, bool) {
	for i, d := range s.Decks {
		if d.ID == id {
			s.Decks = append(s.Decks[:i], s.Decks[i+1:]...)
			return d, true
		}
	}
	return nil, false
}

// NameTaken reports whether another deck already uses name. The comparison
// is exact and case-sensitive; excludeID, when non-empty, is ignored.
func (s *Set) NameTaken(name, excludeID string) bool {
	for _, d := range s.Decks {
		if d.Name == name && (excludeID == "" || d.ID != excludeID) {
			return true
		}
	}
	return false
}

// Len returns the number of decks.
func (s *Set) Len() int {
	return len(s.Decks)
}
