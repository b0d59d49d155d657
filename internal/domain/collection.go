package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection-specific validation errors
var (
	ErrEmptyCollectionID      = fmt.Errorf("%w: collection ID cannot be empty", ErrValidation)
	ErrEmptyCollectionOwnerID = fmt.Errorf("%w: collection owner ID cannot be empty", ErrValidation)
	ErrEmptyCollectionName    = fmt.Errorf("%w: collection name cannot be empty", ErrValidation)
	ErrCollectionNameTooLong  = fmt.Errorf("%w: collection name must be at most 100 characters", ErrValidation)
	ErrOwnerInApprovedUsers   = fmt.Errorf("%w: owner cannot be an approved user", ErrValidation)
)

const maxCollectionNameLength = 100

// Collection is a named, owned group of cards with a visibility policy.
//
// Cards reference their collection by ID; the collection itself does not hold
// card values. ApprovedUserIDs never contains OwnerID since the owner already
// has full access.
type Collection struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	IsPublic        bool        `json:"is_public"`
	ApprovedUserIDs []uuid.UUID `json:"approved_user_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewCollection creates a new Collection owned by ownerID.
func NewCollection(ownerID uuid.UUID, name string, isPublic bool) (*Collection, error) {
	now := time.Now().UTC()
	collection := &Collection{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		OwnerID:   ownerID,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := collection.Validate(); err != nil {
		return nil, err
	}

	return collection, nil
}

// Validate checks if the Collection has valid data.
func (c *Collection) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCollectionID
	}

	if c.OwnerID == uuid.Nil {
		return ErrEmptyCollectionOwnerID
	}

	if c.Name == "" {
		return ErrEmptyCollectionName
	}

	if len([]rune(c.Name)) > maxCollectionNameLength {
		return ErrCollectionNameTooLong
	}

	if slices.Contains(c.ApprovedUserIDs, c.OwnerID) {
		return ErrOwnerInApprovedUsers
	}

	return nil
}

// IsOwnedBy reports whether userID owns the collection.
func (c *Collection) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && c.OwnerID == userID
}

// IsApproved reports whether userID has been granted access by the owner.
func (c *Collection) IsApproved(userID uuid.UUID) bool {
	return userID != uuid.Nil && slices.Contains(c.ApprovedUserIDs, userID)
}

// Update changes the name and visibility and bumps UpdatedAt.
// The collection is left unchanged if the new values are invalid.
func (c *Collection) Update(name string, isPublic bool) error {
	updated := *c
	updated.Name = strings.TrimSpace(name)
	updated.IsPublic = isPublic

	if err := updated.Validate(); err != nil {
		return err
	}

	c.Name = updated.Name
	c.IsPublic = updated.IsPublic
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Approve adds userID to the approved set. Approving the owner or an
// already-approved user is a no-op.
func (c *Collection) Approve(userID uuid.UUID) {
	if userID == uuid.Nil || c.IsOwnedBy(userID) || c.IsApproved(userID) {
		return
	}
	c.ApprovedUserIDs = append(c.ApprovedUserIDs, userID)
}
