package auth

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/core/common/validation"
	"github.com/frahmantamala/salary-simulator/internal/user"
	"golang.org/x/crypto/bcrypt"
)

// Service handles sign-up and credential checks.
type Service struct {
	users      UserStore
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates a new auth service
func NewService(users UserStore, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func validateCredentials(email, password string) *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", email).Email()
	v.Field("password", password).Required()
	return v.ValidateFirst()
}

// Register creates an account after checking the address is free.
func (s *Service) Register(ctx context.Context, dto JoinDTO) (*user.User, error) {
	email := user.NormalizeEmail(dto.Email)
	if err := validateCredentials(email, dto.Password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("failed to check existing user", err)
	}
	if existing != nil {
		return nil, errors.ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate validates credentials and returns the account
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*user.User, error) {
	email := user.NormalizeEmail(dto.Email)
	if err := validateCredentials(email, dto.Password); err != nil {
		return nil, err
	}

	storedHash, userID, err := s.users.GetPasswordHash(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("failed to load credentials", err)
	}
	if storedHash == "" {
		s.logger.Warn("login attempt for unknown account")
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login attempt with wrong password", "user_id", userID)
		return nil, errors.ErrInvalidCredentials
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.NewInternalError("failed to load user", err)
	}
	return u, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
