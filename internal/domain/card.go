package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardCollectionIDEmpty is returned when a card does not reference a collection.
	ErrCardCollectionIDEmpty = fmt.Errorf("%w: card collection ID cannot be empty", ErrValidation)

	// ErrCardTermEmpty is returned when a card's term is blank.
	ErrCardTermEmpty = fmt.Errorf("%w: card term cannot be empty", ErrValidation)

	// ErrCardDefinitionEmpty is returned when a card's definition is blank.
	ErrCardDefinitionEmpty = fmt.Errorf("%w: card definition cannot be empty", ErrValidation)

	// ErrCardTermTooLong is returned when a term exceeds MaxTermLength.
	ErrCardTermTooLong = fmt.Errorf("%w: card term is too long", ErrValidation)

	// ErrCardDefinitionTooLong is returned when a definition exceeds MaxDefinitionLength.
	ErrCardDefinitionTooLong = fmt.Errorf("%w: card definition is too long", ErrValidation)
)

// Length limits for card text, counted in runes.
const (
	MaxTermLength       = 500
	MaxDefinitionLength = 2000
)

// Card is a term/definition pair, the unit of study. It belongs to exactly
// one Collection and is deleted with it.
type Card struct {
	ID           uuid.UUID `json:"id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Term         string    `json:"term"`
	Definition   string    `json:"definition"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCard creates a new Card in the given collection.
func NewCard(collectionID uuid.UUID, term, definition string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Term:         strings.TrimSpace(term),
		Definition:   strings.TrimSpace(definition),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.CollectionID == uuid.Nil {
		return ErrCardCollectionIDEmpty
	}

	if c.Term == "" {
		return ErrCardTermEmpty
	}

	if c.Definition == "" {
		return ErrCardDefinitionEmpty
	}

	if len([]rune(c.Term)) > MaxTermLength {
		return ErrCardTermTooLong
	}

	if len([]rune(c.Definition)) > MaxDefinitionLength {
		return ErrCardDefinitionTooLong
	}

	return nil
}

// UpdateText replaces the term and definition and updates the UpdatedAt
// timestamp. The card is left unchanged if the new text is invalid.
func (c *Card) UpdateText(term, definition string) error {
	updated := *c
	updated.Term = strings.TrimSpace(term)
	updated.Definition = strings.TrimSpace(definition)

	if err := updated.Validate(); err != nil {
		return err
	}

	c.Term = updated.Term
	c.Definition = updated.Definition
	c.UpdatedAt = time.Now().UTC()
	return nil
}
