package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/salary-simulator/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "__session"

// UserStore is the slice of the user service the auth flows need.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetPasswordHash(ctx context.Context, email string) (passwordHash string, userID int64, err error)
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
}

type ServiceAPI interface {
	Register(ctx context.Context, dto JoinDTO) (*user.User, error)
	Authenticate(ctx context.Context, dto LoginDTO) (*user.User, error)
}

// Claims represents the session token claims
type Claims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Remember bool   `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
