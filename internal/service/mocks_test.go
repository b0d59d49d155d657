package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stefanvasilev2002/intellicard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a sqlmock-backed *sql.DB for transaction boundaries.
// Expectations are verified when the test ends.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, m.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, m
}

// MockCollectionStore mocks store.CollectionStore.
type MockCollectionStore struct {
	mock.Mock
}

func (m *MockCollectionStore) Create(ctx context.Context, c *domain.Collection) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCollectionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collection), args.Error(1)
}

func (m *MockCollectionStore) Update(ctx context.Context, c *domain.Collection) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCollectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCollectionStore) AddApprovedUser(ctx context.Context, collectionID, userID uuid.UUID) error {
	args := m.Called(ctx, collectionID, userID)
	return args.Error(0)
}

func (m *MockCollectionStore) ListAccessible(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Collection), args.Error(1)
}

func (m *MockCollectionStore) WithTx(*sql.Tx) store.CollectionStore {
	return m
}

// MockCardStore mocks store.CardStore.
type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardStore) UpdateText(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardStore) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardStore) CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	args := m.Called(ctx, collectionID)
	return args.Int(0), args.Error(1)
}

func (m *MockCardStore) ListDueForUser(
	ctx context.Context,
	collectionID, userID uuid.UUID,
	now time.Time,
) ([]*domain.Card, error) {
	args := m.Called(ctx, collectionID, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardStore) WithTx(*sql.Tx) store.CardStore {
	return m
}

// MockProgressStore mocks store.ProgressStore.
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.Progress, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Progress), args.Error(1)
}

func (m *MockProgressStore) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.Progress, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Progress), args.Error(1)
}

func (m *MockProgressStore) EnsureExists(ctx context.Context, userID, cardID uuid.UUID) error {
	args := m.Called(ctx, userID, cardID)
	return args.Error(0)
}

func (m *MockProgressStore) Update(ctx context.Context, p *domain.Progress) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProgressStore) ListByCollection(
	ctx context.Context,
	userID, collectionID uuid.UUID,
) ([]*domain.Progress, error) {
	args := m.Called(ctx, userID, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Progress), args.Error(1)
}

func (m *MockProgressStore) WithTx(*sql.Tx) store.ProgressStore {
	return m
}

// MockAccessRequestStore mocks store.AccessRequestStore.
type MockAccessRequestStore struct {
	mock.Mock
}

func (m *MockAccessRequestStore) Create(ctx context.Context, r *domain.AccessRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockAccessRequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AccessRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestStore) FindByRequester(
	ctx context.Context,
	requesterID, collectionID uuid.UUID,
) (*domain.AccessRequest, error) {
	args := m.Called(ctx, requesterID, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestStore) ListPendingByCollection(
	ctx context.Context,
	collectionID uuid.UUID,
) ([]*domain.AccessRequestDetails, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccessRequestDetails), args.Error(1)
}

func (m *MockAccessRequestStore) CompareAndSwapStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.AccessRequestStatus,
) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccessRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccessRequestStore) WithTx(*sql.Tx) store.AccessRequestStore {
	return m
}

// MockUserStore mocks store.UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}

// MockGenerator mocks generation.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateCards(ctx context.Context, req generation.Request) ([]generation.Pair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]generation.Pair), args.Error(1)
}

// testCollection builds a valid private collection owned by ownerID.
func testCollection(ownerID uuid.UUID, approved ...uuid.UUID) *domain.Collection {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Collection{
		ID:              uuid.New(),
		Name:            "Biology",
		OwnerID:         ownerID,
		ApprovedUserIDs: append([]uuid.UUID{}, approved...),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// testCard builds a valid card in collectionID.
func testCard(collectionID uuid.UUID) *domain.Card {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Card{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Term:         "Mitochondria",
		Definition:   "The powerhouse of the cell",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
