// Package access decides what an actor may do with a collection.
//
// The policy is a pure function over a collection snapshot. It keeps no state
// and no cache, so callers must load the collection fresh for every check.
package access

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
)

// Level is the coarse permission class an actor holds over a collection.
type Level string

// Access levels, from most to least privileged.
const (
	LevelOwner      Level = "OWNER"
	LevelApproved   Level = "APPROVED"
	LevelPublicRead Level = "PUBLIC_READ"
	LevelNoAccess   Level = "NO_ACCESS"
)

var (
	// ErrOwnershipRequired is returned when a mutation is attempted by anyone
	// other than the collection owner.
	ErrOwnershipRequired = fmt.Errorf("%w: collection ownership required", domain.ErrUnauthorized)

	// ErrReadAccessRequired is returned when an actor cannot read a collection.
	ErrReadAccessRequired = fmt.Errorf("%w: collection read access required", domain.ErrUnauthorized)
)

// LevelFor evaluates actorID against collection in precedence order: owner,
// approved user, public collection, no access. A nil collection or nil actor
// yields LevelNoAccess, except that anyone may read a public collection.
func LevelFor(actorID uuid.UUID, collection *domain.Collection) Level {
	if collection == nil {
		return LevelNoAccess
	}

	switch {
	case collection.IsOwnedBy(actorID):
		return LevelOwner
	case collection.IsApproved(actorID):
		return LevelApproved
	case collection.IsPublic:
		return LevelPublicRead
	default:
		return LevelNoAccess
	}
}

// CanRead reports whether the level permits reading cards and progress.
func (l Level) CanRead() bool {
	switch l {
	case LevelOwner, LevelApproved, LevelPublicRead:
		return true
	default:
		return false
	}
}

// CanModify reports whether the level permits changing the collection.
func (l Level) CanModify() bool {
	return l == LevelOwner
}

// RequireOwnership fails with ErrOwnershipRequired unless actorID owns the
// collection.
func RequireOwnership(actorID uuid.UUID, collection *domain.Collection) error {
	if !LevelFor(actorID, collection).CanModify() {
		return ErrOwnershipRequired
	}
	return nil
}

// RequireReadAccess fails with ErrReadAccessRequired unless actorID owns, is
// approved for, or can publicly read the collection. The granted level is
// returned on success.
func RequireReadAccess(actorID uuid.UUID, collection *domain.Collection) (Level, error) {
	level := LevelFor(actorID, collection)
	if !level.CanRead() {
		return level, ErrReadAccessRequired
	}
	return level, nil
}
