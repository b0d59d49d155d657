package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accessRequestColumns = []string{"id", "requester_id", "collection_id", "status", "created_at", "updated_at"}

func TestPostgresAccessRequestStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAccessRequestStore(db, nil)
		r, err := domain.NewAccessRequest(uuid.New(), uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(q("INSERT INTO access_requests")).
			WithArgs(r.ID, r.RequesterID, r.CollectionID, "PENDING", r.CreatedAt, r.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Create(context.Background(), r))
	})

	t.Run("row already exists for the pair", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAccessRequestStore(db, nil)
		r, err := domain.NewAccessRequest(uuid.New(), uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(q("INSERT INTO access_requests")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		assert.ErrorIs(t, s.Create(context.Background(), r), store.ErrAccessRequestExists)
	})
}

func TestPostgresAccessRequestStore_Lookup(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("get for update", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAccessRequestStore(db, nil)
		id, rid, cid := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectQuery(q("FOR UPDATE")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(accessRequestColumns).
				AddRow(id.String(), rid.String(), cid.String(), "PENDING", now, now))

		got, err := s.GetForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessRequestPending, got.Status)
		assert.Equal(t, rid, got.RequesterID)
	})

	t.Run("find by requester", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAccessRequestStore(db, nil)
		rid, cid := uuid.New(), uuid.New()

		mock.ExpectQuery(q("WHERE requester_id = $1 AND collection_id = $2")).
			WithArgs(rid, cid).
			WillReturnRows(sqlmock.NewRows(accessRequestColumns).
				AddRow(uuid.NewString(), rid.String(), cid.String(), "REJECTED", now, now))

		got, err := s.FindByRequester(context.Background(), rid, cid)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessRequestRejected, got.Status)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAccessRequestStore(db, nil)

		mock.ExpectQuery(q("FROM access_requests")).WillReturnRows(sqlmock.NewRows(accessRequestColumns))

		_, err := s.FindByRequester(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrAccessRequestNotFound)
	})
}

func TestPostgresAccessRequestStore_ListPendingByCollection(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAccessRequestStore(db, nil)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cid := uuid.New()

	mock.ExpectQuery(q("WHERE r.collection_id = $1 AND r.status = $2")).
		WithArgs(cid, "PENDING").
		WillReturnRows(sqlmock.NewRows(append(accessRequestColumns, "name", "username")).
			AddRow(uuid.NewString(), uuid.NewString(), cid.String(), "PENDING", now, now, "Biology", "ana"))

	got, err := s.ListPendingByCollection(context.Background(), cid)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Biology", got[0].CollectionName)
	assert.Equal(t, "ana", got[0].RequesterUsername)
	assert.Equal(t, domain.AccessRequestPending, got[0].Status)
}

func TestPostgresAccessRequestStore_CompareAndSwapStatus(t *testing.T) {
	t.Parallel()

	t.Run("swapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAccessRequestStore(db, nil)
		id := uuid.New()

		mock.ExpectExec(q("WHERE id = $1 AND status = $2")).
			WithArgs(id, "REJECTED", "PENDING").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := s.CompareAndSwapStatus(context.Background(), id,
			domain.AccessRequestRejected, domain.AccessRequestPending)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("lost the race", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAccessRequestStore(db, nil)

		mock.ExpectExec(q("UPDATE access_requests")).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := s.CompareAndSwapStatus(context.Background(), uuid.New(),
			domain.AccessRequestRejected, domain.AccessRequestPending)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPostgresAccessRequestStore_Delete(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAccessRequestStore(db, nil)
	id := uuid.New()

	mock.ExpectExec(q("DELETE FROM access_requests WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrAccessRequestNotFound)
}
