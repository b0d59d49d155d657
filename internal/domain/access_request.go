package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccessRequestStatus is the state of a request to read a private collection.
type AccessRequestStatus string

// Access request statuses. APPROVED is never persisted: an approved request
// is removed once the requester joins the collection's approved set.
const (
	AccessRequestPending  AccessRequestStatus = "PENDING"
	AccessRequestApproved AccessRequestStatus = "APPROVED"
	AccessRequestRejected AccessRequestStatus = "REJECTED"
)

// Access request validation errors
var (
	ErrAccessRequestIDEmpty         = fmt.Errorf("%w: access request ID cannot be empty", ErrValidation)
	ErrAccessRequestRequesterEmpty  = fmt.Errorf("%w: requester ID cannot be empty", ErrValidation)
	ErrAccessRequestCollectionEmpty = fmt.Errorf("%w: collection ID cannot be empty", ErrValidation)
	ErrInvalidAccessRequestStatus   = fmt.Errorf("%w: invalid access request status", ErrValidation)
	ErrAccessRequestNotRejected     = fmt.Errorf("%w: only rejected requests can be resubmitted", ErrInvalidTransition)
	ErrAccessRequestNotPending      = fmt.Errorf("%w: only pending requests can be answered", ErrInvalidTransition)
)

// AccessRequest records that a user asked the owner of a private collection
// for read access. There is at most one PENDING request per
// (requester, collection) pair.
type AccessRequest struct {
	ID           uuid.UUID           `json:"id"`
	RequesterID  uuid.UUID           `json:"requester_id"`
	CollectionID uuid.UUID           `json:"collection_id"`
	Status       AccessRequestStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// AccessRequestDetails is an AccessRequest joined with the display fields an
// owner needs when reviewing it.
type AccessRequestDetails struct {
	AccessRequest
	CollectionName    string `json:"collection_name"`
	RequesterUsername string `json:"requester_username"`
}

// NewAccessRequest creates a PENDING request.
func NewAccessRequest(requesterID, collectionID uuid.UUID) (*AccessRequest, error) {
	now := time.Now().UTC()
	r := &AccessRequest{
		ID:           uuid.New(),
		RequesterID:  requesterID,
		CollectionID: collectionID,
		Status:       AccessRequestPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate checks if the AccessRequest has valid data.
func (r *AccessRequest) Validate() error {
	if r.ID == uuid.Nil {
		return ErrAccessRequestIDEmpty
	}

	if r.RequesterID == uuid.Nil {
		return ErrAccessRequestRequesterEmpty
	}

	if r.CollectionID == uuid.Nil {
		return ErrAccessRequestCollectionEmpty
	}

	if !r.Status.IsValid() {
		return ErrInvalidAccessRequestStatus
	}

	return nil
}

// Resubmit flips a REJECTED request back to PENDING.
func (r *AccessRequest) Resubmit() error {
	if r.Status != AccessRequestRejected {
		return ErrAccessRequestNotRejected
	}
	r.Status = AccessRequestPending
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject marks a PENDING request as REJECTED.
func (r *AccessRequest) Reject() error {
	if r.Status != AccessRequestPending {
		return ErrAccessRequestNotPending
	}
	r.Status = AccessRequestRejected
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValid reports whether s is a known access request status.
func (s AccessRequestStatus) IsValid() bool {
	switch s {
	case AccessRequestPending, AccessRequestApproved, AccessRequestRejected:
		return true
	default:
		return false
	}
}
