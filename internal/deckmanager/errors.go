package deckmanager

import "errors"

// Every operation that fails also logs the reason, so callers may treat these
// as soft failures and re-prompt.
var (
	ErrNilCard          = errors.New("card is nil")
	ErrNoSession        = errors.New("no editing session is active")
	ErrEmptyName        = errors.New("deck name cannot be empty")
	ErrNameTaken        = errors.New("deck name is already taken")
	ErrDeckNotFound     = errors.New("deck not found")
	ErrRuleViolation    = errors.New("deck rule violation")
	ErrCardNotInSession = errors.New("card is not in the editing session")
	ErrNoGameplayDeck   = errors.New("no gameplay deck is active")
	ErrDeckEmpty        = errors.New("main deck is empty")
	ErrNotEnoughCopies  = errors.New("not enough copies owned")
	ErrNotPersisted     = errors.New("change applied but not persisted")
)
