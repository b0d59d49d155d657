package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"github.com/stefanvasilev2002/intellicard/internal/service/auth"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// UserService registers and authenticates users.
type UserService struct {
	users     store.UserStore
	passwords auth.PasswordHasher
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	passwords auth.PasswordHasher,
	logger *slog.Logger,
) (*UserService, error) {
	if users == nil {
		return nil, fmt.Errorf("%w: user store cannot be nil", domain.ErrValidation)
	}
	if passwords == nil {
		return nil, fmt.Errorf("%w: password hasher cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register creates a user with a hashed password.
func (s *UserService) Register(
	ctx context.Context,
	username, fullName, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, fullName, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	hashed, err := s.passwords.Hash(user.Password)
	if err != nil {
		return nil, NewServiceError("register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		log.Error("failed to create user", slog.String("error", redact.Error(err)))
		return nil, translateStoreError("register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate checks a username and password pair. Both an unknown user
// and a wrong password yield ErrInvalidCredentials.
func (s *UserService) Authenticate(
	ctx context.Context,
	username, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, translateStoreError("authenticate", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError("get user", err)
	}
	return user, nil
}
