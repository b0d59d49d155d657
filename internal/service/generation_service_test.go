package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stefanvasilev2002/intellicard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testGenerationLimits = config.GenerationConfig{
	MaxDocumentBytes:     64 * 1024,
	MinDocumentChars:     20,
	MaxQuestionCount:     50,
	DefaultQuestionCount: 10,
}

const studyNotes = "Cells are the basic unit of life. Mitochondria produce ATP through respiration."

type generationFixture struct {
	svc         *service.GenerationService
	generator   *MockGenerator
	cards       *MockCardStore
	collections *MockCollectionStore
	sql         sqlmock.Sqlmock
}

func newGenerationFixture(t *testing.T, withGenerator bool) *generationFixture {
	t.Helper()
	f := &generationFixture{
		generator:   &MockGenerator{},
		cards:       &MockCardStore{},
		collections: &MockCollectionStore{},
	}
	db, sqlMock := newMockDB(t)
	f.sql = sqlMock

	var gen generation.Generator
	if withGenerator {
		gen = f.generator
	}

	svc, err := service.NewGenerationService(
		gen, generation.NewGuard[*service.GenerateResult](), f.cards, f.collections, testGenerationLimits, db, nil,
	)
	require.NoError(t, err)
	f.svc = svc

	t.Cleanup(func() {
		f.generator.AssertExpectations(t)
		f.cards.AssertExpectations(t)
		f.collections.AssertExpectations(t)
	})
	return f
}

func textDocument(text string) generation.Document {
	return generation.Document{Filename: "notes.txt", Content: []byte(text)}
}

func TestNewGenerationServiceValidation(t *testing.T) {
	t.Parallel()
	db, _ := newMockDB(t)

	_, err := service.NewGenerationService(nil, nil, nil, &MockCollectionStore{}, testGenerationLimits, db, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := testGenerationLimits
	bad.DefaultQuestionCount = 100
	_, err = service.NewGenerationService(nil, nil, &MockCardStore{}, &MockCollectionStore{}, bad, db, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()

	t.Run("stores admitted pairs", func(t *testing.T) {
		f := newGenerationFixture(t, true)
		c := testCollection(owner)

		f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Once()
		f.generator.On("GenerateCards", mock.Anything, mock.MatchedBy(func(r generation.Request) bool {
			return r.Text == studyNotes && r.Count == 10 &&
				r.Level == generation.LevelMedium && r.Language == "English"
		})).Return([]generation.Pair{
			{Term: "Mitochondria", Definition: "Organelle that produces ATP"},
			{Term: "<b>Cell</b>", Definition: "The basic unit of life"},
			{Term: "Short", Definition: "too tiny"},
			{Term: "", Definition: "A definition without any term"},
		}, nil).Once()
		f.sql.ExpectBegin()
		f.cards.On("CreateMultiple", mock.Anything, mock.MatchedBy(func(cards []*domain.Card) bool {
			return len(cards) == 2 && cards[0].Term == "Mitochondria" && cards[1].Term == "Cell" &&
				cards[0].CollectionID == c.ID
		})).Return(nil).Once()
		f.sql.ExpectCommit()

		result, err := f.svc.Generate(ctx, owner, c.ID, service.GenerateInput{
			Document: textDocument("  " + studyNotes + "\n"),
		})
		require.NoError(t, err)
		require.Len(t, result.Cards, 2)
		assert.Equal(t, 2, result.Discarded)
		assert.Equal(t, "Cell", result.Cards[1].Term)
	})

	t.Run("explicit options", func(t *testing.T) {
		f := newGenerationFixture(t, true)
		c := testCollection(owner)

		f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Once()
		f.generator.On("GenerateCards", mock.Anything, mock.MatchedBy(func(r generation.Request) bool {
			return r.Count == 3 && r.Level == generation.LevelHard && r.Language == "Macedonian"
		})).Return([]generation.Pair{{Term: "ATP", Definition: "Adenosine triphosphate"}}, nil).Once()
		f.sql.ExpectBegin()
		f.cards.On("CreateMultiple", mock.Anything, mock.Anything).Return(nil).Once()
		f.sql.ExpectCommit()

		_, err := f.svc.Generate(ctx, owner, c.ID, service.GenerateInput{
			Document: generation.Document{Filename: "upload", ContentType: "text/plain; charset=utf-8", Content: []byte(studyNotes)},
			Count:    3,
			Level:    "hard",
			Language: "Macedonian",
		})
		require.NoError(t, err)
	})

	t.Run("nothing admitted", func(t *testing.T) {
		f := newGenerationFixture(t, true)
		c := testCollection(owner)

		f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Once()
		f.generator.On("GenerateCards", mock.Anything, mock.Anything).
			Return([]generation.Pair{{Term: "X", Definition: "short"}}, nil).Once()

		_, err := f.svc.Generate(ctx, owner, c.ID, service.GenerateInput{Document: textDocument(studyNotes)})
		assert.ErrorIs(t, err, service.ErrInvalidArgument)
		assert.ErrorIs(t, err, generation.ErrNoUsableCards)
		f.cards.AssertNotCalled(t, "CreateMultiple", mock.Anything, mock.Anything)
	})

	t.Run("no generator configured", func(t *testing.T) {
		f := newGenerationFixture(t, false)
		c := testCollection(owner)
		f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Once()

		_, err := f.svc.Generate(ctx, owner, c.ID, service.GenerateInput{Document: textDocument(studyNotes)})
		assert.ErrorIs(t, err, service.ErrGenerationUnavailable)
	})

	t.Run("only the owner may generate", func(t *testing.T) {
		f := newGenerationFixture(t, true)
		approved := uuid.New()
		c := testCollection(owner, approved)
		f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Once()

		_, err := f.svc.Generate(ctx, approved, c.ID, service.GenerateInput{Document: textDocument(studyNotes)})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
		f.generator.AssertNotCalled(t, "GenerateCards", mock.Anything, mock.Anything)
	})
}

func TestGenerateRejectsBadInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()

	tests := []struct {
		name  string
		input service.GenerateInput
		want  error
	}{
		{
			name:  "pdf document",
			input: service.GenerateInput{Document: generation.Document{Filename: "notes.pdf", Content: []byte(studyNotes)}},
			want:  generation.ErrUnsupportedFormat,
		},
		{
			name:  "too short",
			input: service.GenerateInput{Document: textDocument("tiny")},
			want:  generation.ErrDocumentTooShort,
		},
		{
			name:  "too large",
			input: service.GenerateInput{Document: textDocument(strings.Repeat("a", 65*1024))},
			want:  generation.ErrDocumentTooLarge,
		},
		{
			name:  "count above maximum",
			input: service.GenerateInput{Document: textDocument(studyNotes), Count: 51},
			want:  generation.ErrInvalidCount,
		},
		{
			name:  "negative count",
			input: service.GenerateInput{Document: textDocument(studyNotes), Count: -1},
			want:  generation.ErrInvalidCount,
		},
		{
			name:  "unknown level",
			input: service.GenerateInput{Document: textDocument(studyNotes), Level: "IMPOSSIBLE"},
			want:  generation.ErrInvalidLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newGenerationFixture(t, true)
			c := testCollection(owner)
			f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Once()

			_, err := f.svc.Generate(ctx, owner, c.ID, tc.input)
			assert.ErrorIs(t, err, service.ErrInvalidArgument)
			assert.ErrorIs(t, err, tc.want)
			f.generator.AssertNotCalled(t, "GenerateCards", mock.Anything, mock.Anything)
		})
	}
}

func TestGenerateMapsGeneratorErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"transient", fmt.Errorf("%w: exceeded maximum retry attempts", generation.ErrTransientFailure), service.ErrGenerationUnavailable},
		{"invalid response", generation.ErrInvalidResponse, service.ErrGenerationUnavailable},
		{"blocked", generation.ErrContentBlocked, service.ErrInvalidArgument},
		{"cancelled", context.Canceled, context.Canceled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newGenerationFixture(t, true)
			c := testCollection(owner)
			f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Once()
			f.generator.On("GenerateCards", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			_, err := f.svc.Generate(ctx, owner, c.ID, service.GenerateInput{Document: textDocument(studyNotes)})
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestGenerateStoresConcurrentDuplicatesOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	f := newGenerationFixture(t, true)
	c := testCollection(owner)

	started := make(chan struct{})
	release := make(chan struct{})

	f.collections.On("GetByID", mock.Anything, c.ID).Return(c, nil).Twice()
	f.generator.On("GenerateCards", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]generation.Pair{{Term: "ATP", Definition: "Adenosine triphosphate"}}, nil).Once()
	f.sql.ExpectBegin()
	f.cards.On("CreateMultiple", mock.Anything, mock.Anything).Return(nil).Once()
	f.sql.ExpectCommit()

	input := service.GenerateInput{Document: textDocument(studyNotes)}
	var (
		wg      sync.WaitGroup
		results [2]*service.GenerateResult
		errs    [2]error
	)
	call := func(i int) {
		defer wg.Done()
		results[i], errs[i] = f.svc.Generate(ctx, owner, c.ID, input)
	}

	wg.Add(2)
	go call(0)
	<-started
	go call(1)
	// Give the second caller time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.Len(t, results[i].Cards, 1)
	}
	assert.Equal(t, results[0].Cards[0].ID, results[1].Cards[0].ID)
}
