package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/clock"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/domain/access"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// RequestOutcome is the result of asking for access to a collection.
type RequestOutcome string

// Outcomes of RequestAccess.
const (
	OutcomeAlreadyOwner    RequestOutcome = "ALREADY_OWNER"
	OutcomeAlreadyApproved RequestOutcome = "ALREADY_APPROVED"
	OutcomeAlreadyPending  RequestOutcome = "ALREADY_PENDING"
	OutcomeResubmitted     RequestOutcome = "RESUBMITTED"
	OutcomeSubmitted       RequestOutcome = "SUBMITTED"
)

// ResponseOutcome is the result of an owner answering a request.
type ResponseOutcome string

// Outcomes of Respond.
const (
	OutcomeApproved ResponseOutcome = "APPROVED"
	OutcomeRejected ResponseOutcome = "REJECTED"
)

// maxRequestAttempts bounds how often RequestAccess re-reads state after
// losing a race with another writer.
const maxRequestAttempts = 3

// AccessRequestService runs the workflow through which users ask owners of
// private collections for read access.
type AccessRequestService struct {
	requests    store.AccessRequestStore
	collections store.CollectionStore
	clock       clock.Clock
	db          *sql.DB
	logger      *slog.Logger
}

// NewAccessRequestService creates a new AccessRequestService.
// It returns an error if any of the required dependencies are nil.
func NewAccessRequestService(
	requests store.AccessRequestStore,
	collections store.CollectionStore,
	clk clock.Clock,
	db *sql.DB,
	logger *slog.Logger,
) (*AccessRequestService, error) {
	if requests == nil {
		return nil, fmt.Errorf("%w: access request store cannot be nil", domain.ErrValidation)
	}
	if collections == nil {
		return nil, fmt.Errorf("%w: collection store cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: database cannot be nil", domain.ErrValidation)
	}

	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AccessRequestService{
		requests:    requests,
		collections: collections,
		clock:       clk,
		db:          db,
		logger:      logger.With(slog.String("component", "access_request_service")),
	}, nil
}

// RequestAccess asks the owner of a collection for read access on behalf of
// requesterID. The returned request is nil for AlreadyOwner and
// AlreadyApproved.
func (s *AccessRequestService) RequestAccess(
	ctx context.Context,
	requesterID, collectionID uuid.UUID,
) (RequestOutcome, *domain.AccessRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for attempt := 0; attempt < maxRequestAttempts; attempt++ {
		outcome, request, retry, err := s.tryRequest(ctx, requesterID, collectionID)
		if err != nil {
			return "", nil, err
		}
		if !retry {
			log.Info("access request handled",
				slog.String("collection_id", collectionID.String()),
				slog.String("requester_id", requesterID.String()),
				slog.String("outcome", string(outcome)))
			return outcome, request, nil
		}
		log.Debug("access request raced with another writer, re-reading",
			slog.String("collection_id", collectionID.String()),
			slog.Int("attempt", attempt+1))
	}

	return "", nil, NewServiceError(
		"request access",
		"request state kept changing",
		store.ErrTransactionFailed,
	)
}

// tryRequest makes one pass at RequestAccess. retry is true when another
// writer changed the request between our read and our write.
func (s *AccessRequestService) tryRequest(
	ctx context.Context,
	requesterID, collectionID uuid.UUID,
) (RequestOutcome, *domain.AccessRequest, bool, error) {
	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return "", nil, false, err
	}

	switch access.LevelFor(requesterID, collection) {
	case access.LevelOwner:
		return OutcomeAlreadyOwner, nil, false, nil
	case access.LevelApproved:
		return OutcomeAlreadyApproved, nil, false, nil
	}

	existing, err := s.requests.FindByRequester(ctx, requesterID, collectionID)
	if errors.Is(err, store.ErrAccessRequestNotFound) {
		request, err := domain.NewAccessRequest(requesterID, collectionID)
		if err != nil {
			return "", nil, false, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		err = s.requests.Create(ctx, request)
		if errors.Is(err, store.ErrAccessRequestExists) {
			return "", nil, true, nil
		}
		if err != nil {
			return "", nil, false, translateStoreError("request access", err)
		}
		return OutcomeSubmitted, request, false, nil
	}
	if err != nil {
		return "", nil, false, translateStoreError("request access", err)
	}

	switch existing.Status {
	case domain.AccessRequestPending:
		return OutcomeAlreadyPending, existing, false, nil
	case domain.AccessRequestRejected:
		var swapped bool
		err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			var err error
			swapped, err = s.requests.WithTx(tx).CompareAndSwapStatus(
				ctx,
				existing.ID,
				domain.AccessRequestRejected,
				domain.AccessRequestPending,
			)
			return err
		})
		if err != nil {
			return "", nil, false, translateStoreError("request access", err)
		}
		if !swapped {
			return "", nil, true, nil
		}
		existing.Status = domain.AccessRequestPending
		existing.UpdatedAt = s.clock.Now()
		return OutcomeResubmitted, existing, false, nil
	default:
		return "", nil, false, NewServiceError(
			"request access",
			"unexpected stored status",
			fmt.Errorf("%w: %s", domain.ErrInvalidAccessRequestStatus, existing.Status),
		)
	}
}

// ListPending returns the pending requests of a collection. Owner only.
func (s *AccessRequestService) ListPending(
	ctx context.Context,
	actorID, collectionID uuid.UUID,
) ([]*domain.AccessRequestDetails, error) {
	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return nil, err
	}

	if err := access.RequireOwnership(actorID, collection); err != nil {
		return nil, err
	}

	requests, err := s.requests.ListPendingByCollection(ctx, collectionID)
	if err != nil {
		return nil, translateStoreError("list access requests", err)
	}

	return requests, nil
}

// Respond approves or rejects a pending request. Owner only; the request
// must belong to collectionID. Approving adds the requester to the approved
// set and removes the request, rejecting keeps it as REJECTED so the
// requester can resubmit.
func (s *AccessRequestService) Respond(
	ctx context.Context,
	actorID, collectionID, requestID uuid.UUID,
	approve bool,
) (ResponseOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	collection, err := loadCollection(ctx, s.collections, collectionID)
	if err != nil {
		return "", err
	}

	if err := access.RequireOwnership(actorID, collection); err != nil {
		log.Warn("access request response refused",
			slog.String("collection_id", collectionID.String()),
			slog.String("actor_id", actorID.String()))
		return "", err
	}

	outcome := OutcomeRejected
	if approve {
		outcome = OutcomeApproved
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRequests := s.requests.WithTx(tx)

		request, err := txRequests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}

		if request.CollectionID != collectionID {
			return ErrMismatchedCollection
		}

		if request.Status != domain.AccessRequestPending {
			return domain.ErrAccessRequestNotPending
		}

		if !approve {
			swapped, err := txRequests.CompareAndSwapStatus(
				ctx,
				requestID,
				domain.AccessRequestPending,
				domain.AccessRequestRejected,
			)
			if err != nil {
				return err
			}
			if !swapped {
				return domain.ErrAccessRequestNotPending
			}
			return nil
		}

		if err := s.collections.WithTx(tx).AddApprovedUser(ctx, collectionID, request.RequesterID); err != nil {
			return err
		}
		return txRequests.Delete(ctx, requestID)
	})
	if err != nil {
		if !isServiceSentinel(err) {
			log.Error("failed to answer access request",
				slog.String("error", redact.Error(err)),
				slog.String("request_id", requestID.String()))
		}
		return "", passOrWrap("respond to access request", err)
	}

	log.Info("access request answered",
		slog.String("request_id", requestID.String()),
		slog.String("collection_id", collectionID.String()),
		slog.String("outcome", string(outcome)))

	return outcome, nil
}
