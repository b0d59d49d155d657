package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/api"
	"github.com/stefanvasilev2002/intellicard/internal/api/middleware"
	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/service"
	"github.com/stefanvasilev2002/intellicard/internal/service/auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:                   "test-secret-that-is-at-least-32-characters",
	TokenLifetimeMinutes:        60,
	RefreshTokenLifetimeMinutes: 1440,
	BCryptCost:                  4,
}

const testMaxDocumentBytes = 4096

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, username, fullName, password string) (*domain.User, error) {
	args := m.Called(ctx, username, fullName, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) Create(
	ctx context.Context, actorID uuid.UUID, name string, isPublic bool,
) (*service.CollectionView, error) {
	args := m.Called(ctx, actorID, name, isPublic)
	v, _ := args.Get(0).(*service.CollectionView)
	return v, args.Error(1)
}

func (m *MockCollectionService) Get(ctx context.Context, actorID, collectionID uuid.UUID) (*service.CollectionView, error) {
	args := m.Called(ctx, actorID, collectionID)
	v, _ := args.Get(0).(*service.CollectionView)
	return v, args.Error(1)
}

func (m *MockCollectionService) ListAccessible(ctx context.Context, actorID uuid.UUID) ([]*service.CollectionView, error) {
	args := m.Called(ctx, actorID)
	v, _ := args.Get(0).([]*service.CollectionView)
	return v, args.Error(1)
}

func (m *MockCollectionService) Update(
	ctx context.Context, actorID, collectionID uuid.UUID, name string, isPublic bool,
) (*service.CollectionView, error) {
	args := m.Called(ctx, actorID, collectionID, name, isPublic)
	v, _ := args.Get(0).(*service.CollectionView)
	return v, args.Error(1)
}

func (m *MockCollectionService) Delete(ctx context.Context, actorID, collectionID uuid.UUID) error {
	return m.Called(ctx, actorID, collectionID).Error(0)
}

type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) List(ctx context.Context, actorID, collectionID uuid.UUID) ([]*service.CardWithProgress, error) {
	args := m.Called(ctx, actorID, collectionID)
	v, _ := args.Get(0).([]*service.CardWithProgress)
	return v, args.Error(1)
}

func (m *MockCardService) Create(
	ctx context.Context, actorID, collectionID uuid.UUID, term, definition string,
) (*domain.Card, error) {
	args := m.Called(ctx, actorID, collectionID, term, definition)
	c, _ := args.Get(0).(*domain.Card)
	return c, args.Error(1)
}

func (m *MockCardService) Update(
	ctx context.Context, actorID, cardID uuid.UUID, term, definition string,
) (*domain.Card, error) {
	args := m.Called(ctx, actorID, cardID, term, definition)
	c, _ := args.Get(0).(*domain.Card)
	return c, args.Error(1)
}

func (m *MockCardService) Delete(ctx context.Context, actorID, cardID uuid.UUID) error {
	return m.Called(ctx, actorID, cardID).Error(0)
}

type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(
	ctx context.Context, actorID, collectionID uuid.UUID, input service.GenerateInput,
) (*service.GenerateResult, error) {
	args := m.Called(ctx, actorID, collectionID, input)
	r, _ := args.Get(0).(*service.GenerateResult)
	return r, args.Error(1)
}

type MockStudyService struct {
	mock.Mock
}

func (m *MockStudyService) Review(
	ctx context.Context, actorID, cardID uuid.UUID, correct bool, difficulty int,
) (*domain.Progress, error) {
	args := m.Called(ctx, actorID, cardID, correct, difficulty)
	p, _ := args.Get(0).(*domain.Progress)
	return p, args.Error(1)
}

func (m *MockStudyService) DueCards(ctx context.Context, actorID, collectionID uuid.UUID) ([]*domain.Card, error) {
	args := m.Called(ctx, actorID, collectionID)
	c, _ := args.Get(0).([]*domain.Card)
	return c, args.Error(1)
}

func (m *MockStudyService) Overview(ctx context.Context, actorID, collectionID uuid.UUID) (domain.StudyOverview, error) {
	args := m.Called(ctx, actorID, collectionID)
	return args.Get(0).(domain.StudyOverview), args.Error(1)
}

type MockAccessRequestService struct {
	mock.Mock
}

func (m *MockAccessRequestService) RequestAccess(
	ctx context.Context, requesterID, collectionID uuid.UUID,
) (service.RequestOutcome, *domain.AccessRequest, error) {
	args := m.Called(ctx, requesterID, collectionID)
	r, _ := args.Get(1).(*domain.AccessRequest)
	return args.Get(0).(service.RequestOutcome), r, args.Error(2)
}

func (m *MockAccessRequestService) ListPending(
	ctx context.Context, actorID, collectionID uuid.UUID,
) ([]*domain.AccessRequestDetails, error) {
	args := m.Called(ctx, actorID, collectionID)
	d, _ := args.Get(0).([]*domain.AccessRequestDetails)
	return d, args.Error(1)
}

func (m *MockAccessRequestService) Respond(
	ctx context.Context, actorID, collectionID, requestID uuid.UUID, approve bool,
) (service.ResponseOutcome, error) {
	args := m.Called(ctx, actorID, collectionID, requestID, approve)
	return args.Get(0).(service.ResponseOutcome), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error {
	return p.err
}

// testServer wires every handler to mocks behind the real router and a real
// JWT service.
type testServer struct {
	t           *testing.T
	handler     http.Handler
	jwt         auth.JWTService
	users       *MockUserService
	collections *MockCollectionService
	cards       *MockCardService
	generator   *MockGenerationService
	study       *MockStudyService
	requests    *MockAccessRequestService
}

func newTestServer(t *testing.T, db api.Pinger) *testServer {
	t.Helper()
	jwtService, err := auth.NewJWTService(testAuthConfig)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &testServer{
		t:           t,
		jwt:         jwtService,
		users:       &MockUserService{},
		collections: &MockCollectionService{},
		cards:       &MockCardService{},
		generator:   &MockGenerationService{},
		study:       &MockStudyService{},
		requests:    &MockAccessRequestService{},
	}

	s.handler = api.NewRouter(api.Handlers{
		Auth:           api.NewAuthHandler(s.users, jwtService, testAuthConfig, log),
		Collections:    api.NewCollectionHandler(s.collections, log),
		Cards:          api.NewCardHandler(s.cards, s.generator, testMaxDocumentBytes, log),
		Study:          api.NewStudyHandler(s.study, log),
		AccessRequests: api.NewAccessRequestHandler(s.requests, log),
	}, middleware.NewAuthMiddleware(jwtService), db, log)

	t.Cleanup(func() {
		s.users.AssertExpectations(t)
		s.collections.AssertExpectations(t)
		s.cards.AssertExpectations(t)
		s.generator.AssertExpectations(t)
		s.study.AssertExpectations(t)
		s.requests.AssertExpectations(t)
	})
	return s
}

// do sends req, authenticated as userID unless userID is uuid.Nil.
func (s *testServer) do(req *http.Request, userID uuid.UUID) *httptest.ResponseRecorder {
	s.t.Helper()
	if userID != uuid.Nil {
		token, err := s.jwt.GenerateToken(context.Background(), userID)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}
