package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskvault/task-tracker-api/internal/model"
	"github.com/taskvault/task-tracker-api/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrBadInput           = errors.New("invalid input")
)

// Service is the identity provider: it registers users, checks credentials and
// issues the tokens whose subject becomes the caller identity downstream.
type Service struct {
	users  repo.UserRepository
	tokens *TokenManager
	hasher *PasswordHasher
	logger *zap.Logger
}

func NewService(users repo.UserRepository, tokens *TokenManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		tokens: tokens,
		hasher: NewPasswordHasher(),
		logger: logger,
	}
}

func (s *Service) Register(ctx context.Context, email, password, name string) (model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegistration(email, password, name); err != nil {
		return model.User{}, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, "", err
	}

	user, err := s.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return model.User{}, "", ErrEmailTaken
		}
		return model.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.User{}, "", err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, "", ErrInvalidCredentials
		}
		return model.User{}, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func validateRegistration(email, password, name string) error {
	if !strings.Contains(email, "@") || len(email) < 3 {
		return fmt.Errorf("%w: valid email required", ErrBadInput)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrBadInput)
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return fmt.Errorf("%w: name must be 2-100 characters", ErrBadInput)
	}
	return nil
}
