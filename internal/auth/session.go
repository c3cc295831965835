package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/internal/user"
	"github.com/frahmantamala/salary-simulator/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserLoader resolves the account behind a session.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// SessionManager signs, reads and clears the session cookie.
type SessionManager struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
	security    internal.SecurityConfig
	users       UserLoader
	base        *transport.BaseHandler
}

func NewSessionManager(cfg internal.SecurityConfig, users UserLoader, base *transport.BaseHandler) *SessionManager {
	return &SessionManager{
		secret:      []byte(cfg.SessionSecret),
		ttl:         cfg.SessionTTL,
		rememberTTL: cfg.RememberTTL,
		secure:      cfg.SecureCookie,
		security:    cfg,
		users:       users,
		base:        base,
	}
}

// GenerateToken signs a session token for the user.
func (m *SessionManager) GenerateToken(userID int64, email string, remember bool) (string, time.Time, error) {
	ttl := m.ttl
	if remember {
		ttl = m.rememberTTL
	}
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		UserID:   userID,
		Email:    email,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a session token and returns claims
func (m *SessionManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID > 0 {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// CreateUserSession sets the session cookie. Without remember the cookie
// lasts for the browser session; the token itself still expires.
func (m *SessionManager) CreateUserSession(w http.ResponseWriter, u *user.User, remember bool) error {
	token, expiresAt, err := m.GenerateToken(u.ID, u.Email, remember)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = expiresAt
		cookie.MaxAge = int(m.rememberTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// Destroy clears the session cookie.
func (m *SessionManager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetUserID returns the user id of a valid session, or 0. It never fails.
func (m *SessionManager) GetUserID(r *http.Request) int64 {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return 0
	}
	claims, err := m.ValidateToken(cookie.Value)
	if err != nil {
		return 0
	}
	return claims.UserID
}

// LoadUser puts the signed-in user, if any, into the request context.
// Sessions pointing at a deleted account are cleared.
func (m *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.GetUserID(r)
		if userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, internal.ErrUserNotFound) {
				m.Destroy(w)
			} else {
				logger.From(r.Context()).Error("failed to load session user", "user_id", userID, "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := internal.ContextWithSessionUser(r.Context(), &internal.SessionUser{
			ID:      u.ID,
			Email:   u.Email,
			IsAdmin: m.security.IsAdmin(u.Email),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser sends anonymous browsers to the login page, remembering where
// they were going; API clients get a 401.
func (m *SessionManager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if internal.SessionUserFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if transport.WantsJSON(r) {
			status, action := m.base.ActionFromError(internal.ErrAuthenticationRequired)
			m.base.WriteJSON(w, status, action)
			return
		}
		m.base.Redirect(w, r, "/login?"+url.Values{"redirectTo": {r.URL.RequestURI()}}.Encode())
	})
}
