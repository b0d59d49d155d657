package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
)

// AccessRequestStore defines the interface for access request persistence.
type AccessRequestStore interface {
	// Create saves a new PENDING request.
	// Returns ErrAccessRequestExists if the requester already has a request
	// row on the collection, whatever its status.
	Create(ctx context.Context, request *domain.AccessRequest) error

	// GetForUpdate retrieves a request by ID and locks the row until the
	// surrounding transaction ends.
	// Returns ErrAccessRequestNotFound if the request does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AccessRequest, error)

	// FindByRequester returns the requester's request on the collection, in
	// any status. Returns ErrAccessRequestNotFound if there is none.
	FindByRequester(ctx context.Context, requesterID, collectionID uuid.UUID) (*domain.AccessRequest, error)

	// ListPendingByCollection returns the collection's PENDING requests,
	// oldest first, with requester and collection display names.
	ListPendingByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.AccessRequestDetails, error)

	// CompareAndSwapStatus sets the request's status to to only if it is
	// currently from. It reports whether the swap happened; a false result
	// with a nil error means another writer changed the row first.
	CompareAndSwapStatus(
		ctx context.Context,
		id uuid.UUID,
		from, to domain.AccessRequestStatus,
	) (bool, error)

	// Delete removes a request.
	// Returns ErrAccessRequestNotFound if the request does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new AccessRequestStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AccessRequestStore
}
