package user

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/salary-simulator/internal"
	userDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/user"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	// GetPasswordHash returns the stored hash and user id, or an empty hash
	// when the email is unknown.
	GetPasswordHash(ctx context.Context, email string) (string, int64, error)
	// Create inserts the user and its password row together.
	Create(ctx context.Context, email, passwordHash string) (*userDatamodel.User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// GetByEmail returns nil without error when no user has the address.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	return FromDataModel(u), nil
}

func (s *Service) GetPasswordHash(ctx context.Context, email string) (string, int64, error) {
	return s.repo.GetPasswordHash(ctx, NormalizeEmail(email))
}

// Create stores a new account, failing when the email is already taken.
func (s *Service) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrEmailTaken
	}

	u, err := s.repo.Create(ctx, email, passwordHash)
	if err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "user_id", u.ID)
	return FromDataModel(u), nil
}
