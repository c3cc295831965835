package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextUserKey ctxKey = "userID"

// UserIDFromContext returns the signed-in user id stored by the session
// middleware, or 0 when the request is anonymous.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if userID, ok := ctx.Value(ContextUserKey).(int64); ok {
		return userID
	}
	return 0
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

const ContextSessionUserKey ctxKey = "sessionUser"

// SessionUser is the signed-in account as seen by handlers and templates.
type SessionUser struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// ContextWithSessionUser stores the user and its id.
func ContextWithSessionUser(ctx context.Context, u *SessionUser) context.Context {
	ctx = context.WithValue(ctx, ContextSessionUserKey, u)
	return ContextWithUserID(ctx, u.ID)
}

func SessionUserFromContext(ctx context.Context) *SessionUser {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(ContextSessionUserKey).(*SessionUser); ok {
		return u
	}
	return nil
}
