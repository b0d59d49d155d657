package postgres

import (
	"context"
	"database/sql"
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

var cardColumns = []string{"id", "collection_id", "term", "definition", "created_at", "updated_at"}

func TestPostgresCardStore_CreateMultiple(t *testing.T) {
	t.Parallel()
	collectionID := uuid.New()

	t.Run("inserts every card in the transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		c1, err := domain.NewCard(collectionID, "mitosis", "cell division")
		require.NoError(t, err)
		c2, err := domain.NewCard(collectionID, "meiosis", "reduction division")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO cards")).
			WithArgs(c1.ID, collectionID, "mitosis", "cell division", c1.CreatedAt, c1.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("INSERT INTO cards")).
			WithArgs(c2.ID, collectionID, "meiosis", "reduction division", c2.CreatedAt, c2.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).CreateMultiple(ctx, []*domain.Card{c1, c2})
		})
		require.NoError(t, err)
	})

	t.Run("one invalid card rejects the batch", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		good, err := domain.NewCard(collectionID, "term", "definition")
		require.NoError(t, err)
		bad := &domain.Card{ID: uuid.New(), CollectionID: collectionID, Term: "term"}

		err = s.CreateMultiple(context.Background(), []*domain.Card{good, bad})
		assert.ErrorIs(t, err, domain.ErrCardDefinitionEmpty)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		assert.NoError(t, s.CreateMultiple(context.Background(), nil))
	})

	t.Run("missing collection", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		c, err := domain.NewCard(collectionID, "term", "definition")
		require.NoError(t, err)

		mock.ExpectExec(q("INSERT INTO cards")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		err = s.CreateMultiple(context.Background(), []*domain.Card{c})
		assert.ErrorIs(t, err, store.ErrCollectionNotFound)
	})
}

func TestPostgresCardStore_GetUpdateDelete(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("get", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		id, cid := uuid.New(), uuid.New()

		mock.ExpectQuery(q("FROM cards")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(cardColumns).
				AddRow(id.String(), cid.String(), "term", "definition", now, now))

		got, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, cid, got.CollectionID)
		assert.Equal(t, "term", got.Term)
	})

	t.Run("get missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)

		mock.ExpectQuery(q("FROM cards")).WillReturnRows(sqlmock.NewRows(cardColumns))

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})

	t.Run("update text", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		c, err := domain.NewCard(uuid.New(), "term", "definition")
		require.NoError(t, err)

		mock.ExpectExec(q("UPDATE cards")).
			WithArgs(c.ID, "term", "definition", c.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.UpdateText(context.Background(), c))
	})

	t.Run("delete missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)

		mock.ExpectExec(q("DELETE FROM cards WHERE id = $1")).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), uuid.New()), store.ErrCardNotFound)
	})
}

func TestPostgresCardStore_ListAndCount(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("list by collection", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		cid := uuid.New()

		mock.ExpectQuery(q("ORDER BY created_at, id")).
			WithArgs(cid).
			WillReturnRows(sqlmock.NewRows(cardColumns).
				AddRow(uuid.NewString(), cid.String(), "a", "first", now, now).
				AddRow(uuid.NewString(), cid.String(), "b", "second", now.Add(time.Minute), now))

		got, err := s.ListByCollection(context.Background(), cid)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Term)
		assert.Equal(t, "b", got[1].Term)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)

		mock.ExpectQuery(q("FROM cards")).WillReturnRows(sqlmock.NewRows(cardColumns))

		got, err := s.ListByCollection(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("count", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresCardStore(db, nil)
		cid := uuid.New()

		mock.ExpectQuery(q("SELECT COUNT(*) FROM cards WHERE collection_id = $1")).
			WithArgs(cid).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		n, err := s.CountByCollection(context.Background(), cid)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	})
}

func TestPostgresCardStore_ListDueForUser(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresCardStore(db, nil)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cid, uid := uuid.New(), uuid.New()

	mock.ExpectQuery(q("LEFT JOIN progress p ON p.card_id = c.id AND p.user_id = $2")).
		WithArgs(cid, uid, now).
		WillReturnRows(sqlmock.NewRows(cardColumns).
			AddRow(uuid.NewString(), cid.String(), "new", "never reviewed", now, now))

	got, err := s.ListDueForUser(context.Background(), cid, uid, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Term)
}
