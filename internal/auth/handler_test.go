package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/core/database"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/internal/user"
	userPostgres "github.com/frahmantamala/salary-simulator/internal/user/postgres"
	"github.com/frahmantamala/salary-simulator/internal/web"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Auth Handler Integration", func() {
	var (
		router   http.Handler
		sessions *SessionManager
		users    *user.Service
		security internal.SecurityConfig
	)

	ginkgo.BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err := database.OpenMemory()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		ginkgo.DeferCleanup(db.Close)

		security = internal.SecurityConfig{
			SessionSecret: "test-session-secret-that-is-long-enough",
			SessionTTL:    time.Hour,
			RememberTTL:   7 * 24 * time.Hour,
			BCryptCost:    bcrypt.MinCost,
			AdminEmails:   []string{"admin@example.com"},
		}

		views, err := web.NewRenderer()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		base := transport.NewBaseHandler(slogger, views)

		users = user.NewService(userPostgres.NewUserRepository(db.Gorm), slogger)
		sessions = NewSessionManager(security, users, base)
		handler := NewHandler(base, NewService(users, security.BCryptCost, slogger), sessions)

		r := chi.NewRouter()
		r.Use(sessions.LoadUser)
		r.Get("/join", handler.JoinPage)
		r.Post("/join", handler.Join)
		r.Get("/login", handler.LoginPage)
		r.Post("/login", handler.Login)
		r.Post("/logout", handler.Logout)
		r.Group(func(pr chi.Router) {
			pr.Use(sessions.RequireUser)
			pr.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
				base.WriteJSON(w, http.StatusOK, internal.SessionUserFromContext(req.Context()))
			})
		})
		router = r
	})

	send := func(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	postForm := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return send(req)
	}

	sessionCookie := func(w *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range w.Result().Cookies() {
			if c.Name == SessionCookieName {
				return c
			}
		}
		return nil
	}

	ginkgo.Describe("POST /join", func() {
		ginkgo.It("creates the account, signs in and redirects home", func() {
			// When
			w := postForm("/join", url.Values{"email": {"new@example.com"}, "password": {"s3cret"}})

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
			gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/"))

			cookie := sessionCookie(w)
			gomega.Expect(cookie).ToNot(gomega.BeNil())
			gomega.Expect(cookie.HttpOnly).To(gomega.BeTrue())
			gomega.Expect(cookie.MaxAge).To(gomega.BeZero())

			me := send(httptest.NewRequest(http.MethodGet, "/whoami", nil), cookie)
			gomega.Expect(me.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(me.Body.String()).To(gomega.ContainSubstring("new@example.com"))
		})

		ginkgo.It("honours a local redirectTo", func() {
			// When
			w := postForm("/join", url.Values{"email": {"new@example.com"}, "password": {"s3cret"}, "redirectTo": {"/simulations/new"}})

			// Then
			gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/simulations/new"))
		})

		ginkgo.It("re-renders the form for a taken email", func() {
			// Given
			_, err := users.Create(context.Background(), "taken@example.com", "hash")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			w := postForm("/join", url.Values{"email": {"taken@example.com"}, "password": {"s3cret"}})

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("A user already exists with this email"))
			gomega.Expect(sessionCookie(w)).To(gomega.BeNil())
		})

		ginkgo.It("answers JSON clients with field errors", func() {
			// Given
			req := httptest.NewRequest(http.MethodPost, "/join", strings.NewReader(`{"email":"bad","password":"x"}`))
			req.Header.Set("Content-Type", "application/json")

			// When
			w := send(req)

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
			var resp transport.ActionData
			gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
			gomega.Expect(resp.Errors).To(gomega.Equal(map[string]string{"email": "Email is invalid"}))
		})
	})

	ginkgo.Describe("POST /login", func() {
		ginkgo.BeforeEach(func() {
			w := postForm("/join", url.Values{"email": {"admin@example.com"}, "password": {"s3cret"}})
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
		})

		ginkgo.It("defaults to the simulations list", func() {
			// When
			w := postForm("/login", url.Values{"email": {"admin@example.com"}, "password": {"s3cret"}})

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
			gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/simulations"))
		})

		ginkgo.It("ignores an off-site redirectTo", func() {
			// When
			w := postForm("/login", url.Values{"email": {"admin@example.com"}, "password": {"s3cret"}, "redirectTo": {"https://evil.example"}})

			// Then
			gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/simulations"))
		})

		ginkgo.It("keeps the cookie across browser restarts when remembered", func() {
			// When
			w := postForm("/login", url.Values{"email": {"admin@example.com"}, "password": {"s3cret"}, "remember": {"on"}})

			// Then
			cookie := sessionCookie(w)
			gomega.Expect(cookie).ToNot(gomega.BeNil())
			gomega.Expect(cookie.MaxAge).To(gomega.Equal(int(security.RememberTTL.Seconds())))
		})

		ginkgo.It("marks configured admins", func() {
			// Given
			w := postForm("/login", url.Values{"email": {"admin@example.com"}, "password": {"s3cret"}})

			// When
			me := send(httptest.NewRequest(http.MethodGet, "/whoami", nil), sessionCookie(w))

			// Then
			var u internal.SessionUser
			gomega.Expect(json.NewDecoder(me.Body).Decode(&u)).To(gomega.Succeed())
			gomega.Expect(u.IsAdmin).To(gomega.BeTrue())
		})

		ginkgo.It("reports wrong credentials on the email field", func() {
			// When
			w := postForm("/login", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}})

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("Invalid email or password"))
		})
	})

	ginkgo.Describe("GET /login", func() {
		ginkgo.It("redirects signed-in users home", func() {
			// Given
			joined := postForm("/join", url.Values{"email": {"new@example.com"}, "password": {"s3cret"}})

			// When
			w := send(httptest.NewRequest(http.MethodGet, "/login", nil), sessionCookie(joined))

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
			gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/"))
		})

		ginkgo.It("carries redirectTo into the form", func() {
			// When
			w := send(httptest.NewRequest(http.MethodGet, "/login?redirectTo=%2Fsettings", nil))

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(w.Body.String()).To(gomega.ContainSubstring(`name="redirectTo" value="/settings"`))
		})
	})

	ginkgo.Describe("RequireUser", func() {
		ginkgo.It("sends anonymous browsers to the login page", func() {
			// When
			w := send(httptest.NewRequest(http.MethodGet, "/whoami?x=1", nil))

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
			gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/login?redirectTo=%2Fwhoami%3Fx%3D1"))
		})

		ginkgo.It("answers anonymous API clients with 401", func() {
			// Given
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Accept", "application/json")

			// When
			w := send(req)

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("treats a tampered cookie as anonymous", func() {
			// Given
			joined := postForm("/join", url.Values{"email": {"new@example.com"}, "password": {"s3cret"}})
			cookie := sessionCookie(joined)
			cookie.Value += "x"

			// When
			w := send(httptest.NewRequest(http.MethodGet, "/whoami", nil), cookie)

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
		})
	})

	ginkgo.Describe("POST /logout", func() {
		ginkgo.It("clears the cookie and redirects home", func() {
			// When
			w := send(httptest.NewRequest(http.MethodPost, "/logout", nil))

			// Then
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
			gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/"))
			cookie := sessionCookie(w)
			gomega.Expect(cookie).ToNot(gomega.BeNil())
			gomega.Expect(cookie.MaxAge).To(gomega.BeNumerically("<", 0))
		})
	})

	ginkgo.Describe("ValidateToken", func() {
		ginkgo.It("rejects expired tokens", func() {
			// Given
			expired := NewSessionManager(internal.SecurityConfig{
				SessionSecret: security.SessionSecret,
				SessionTTL:    -time.Hour,
			}, users, nil)
			token, _, err := expired.GenerateToken(1, "user@example.com", false)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			claims, err := sessions.ValidateToken(token)

			// Then
			gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("rejects tokens signed with another secret", func() {
			// Given
			other := NewSessionManager(internal.SecurityConfig{
				SessionSecret: "another-secret-that-is-also-long-enough",
				SessionTTL:    time.Hour,
			}, users, nil)
			token, _, err := other.GenerateToken(1, "user@example.com", false)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			_, err = sessions.ValidateToken(token)

			// Then
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})
	})
})
