package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("Middleware", func() {
	var (
		base    *transport.BaseHandler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))
		base = transport.NewBaseHandler(slogger, nil)
	})

	jsonRequest := func(method, path string) *http.Request {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Accept", "application/json")
		return req
	}

	Describe("filterSensitiveBody", func() {
		It("masks passwords in posted forms", func() {
			out := filterSensitiveBody("application/x-www-form-urlencoded", []byte("email=a%40b.c&password=hunter2"))
			Expect(out).NotTo(ContainSubstring("hunter2"))
			Expect(out).To(ContainSubstring("email=a%40b.c"))
		})

		It("masks nested JSON fields", func() {
			out := filterSensitiveBody("application/json; charset=utf-8", []byte(`{"user":{"password":"hunter2"},"name":"x"}`))
			Expect(out).NotTo(ContainSubstring("hunter2"))
			Expect(out).To(ContainSubstring(`"name":"x"`))
		})

		It("masks the session cookie header", func() {
			headers := http.Header{"Cookie": {"__session=abc"}, "Accept": {"text/html"}}
			out := filterSensitiveHeaders(headers)
			Expect(out["Cookie"]).To(Equal(filtered))
			Expect(out["Accept"]).To(Equal("text/html"))
		})
	})

	Describe("RequireAdmin", func() {
		guarded := func(u *internal.SessionUser) *httptest.ResponseRecorder {
			req := jsonRequest(http.MethodGet, "/settings")
			if u != nil {
				req = req.WithContext(internal.ContextWithSessionUser(req.Context(), u))
			}
			w := httptest.NewRecorder()
			RequireAdmin(base)(ok).ServeHTTP(w, req)
			return w
		}

		It("lets admins through", func() {
			Expect(guarded(&internal.SessionUser{ID: 1, IsAdmin: true}).Code).To(Equal(http.StatusOK))
		})

		It("forbids other users", func() {
			Expect(guarded(&internal.SessionUser{ID: 2}).Code).To(Equal(http.StatusForbidden))
		})

		It("requires a session", func() {
			Expect(guarded(nil).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("TraceID", func() {
		It("echoes the caller's trace id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(TraceHeader, "trace-123")
			w := httptest.NewRecorder()

			TraceID(ok).ServeHTTP(w, req)

			Expect(w.Header().Get(TraceHeader)).To(Equal("trace-123"))
		})

		It("mints one when missing and stores a request logger", func() {
			var seen *slog.Logger
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = logger.From(r.Context())
			})
			w := httptest.NewRecorder()

			TraceID(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Header().Get(TraceHeader)).To(HaveLen(36))
			Expect(seen).NotTo(BeNil())
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("answers 500 instead of crashing", func() {
			panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			})
			w := httptest.NewRecorder()

			RecoveryMiddleware(slogger, base)(panicking).ServeHTTP(w, jsonRequest(http.MethodGet, "/"))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("boom"))
		})
	})

	Describe("LoggingMiddleware", func() {
		It("leaves the request body readable for the handler", func() {
			var body string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				body = string(b)
				w.WriteHeader(http.StatusCreated)
			})
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a&password=b"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			LoggingMiddleware(slogger)(next).ServeHTTP(w, req)

			Expect(body).To(Equal("email=a&password=b"))
			Expect(w.Code).To(Equal(http.StatusCreated))
		})

		Context("with debug logging", func() {
			var (
				logs        *bytes.Buffer
				debugLogger *slog.Logger
				received    string
				echo        http.Handler
			)

			BeforeEach(func() {
				logs = &bytes.Buffer{}
				debugLogger = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
				received = ""
				echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					b, _ := io.ReadAll(r.Body)
					received = string(b)
					w.WriteHeader(http.StatusOK)
				})
			})

			It("logs the filtered body and still hands it to the handler", func() {
				req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a&password=b"))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

				LoggingMiddleware(debugLogger)(echo).ServeHTTP(httptest.NewRecorder(), req)

				Expect(received).To(Equal("email=a&password=b"))
				Expect(logs.String()).To(ContainSubstring("incoming request"))
				Expect(logs.String()).To(ContainSubstring("password=%5BFILTERED%5D"))
				Expect(logs.String()).NotTo(ContainSubstring("password=b"))
			})

			It("caps how much of a large body is buffered for the log", func() {
				large := strings.Repeat("x", maxLoggedBodyBytes*3)
				req := httptest.NewRequest(http.MethodPost, "/simulations/new", strings.NewReader(large))
				req.Header.Set("Content-Type", "text/plain")

				LoggingMiddleware(debugLogger)(echo).ServeHTTP(httptest.NewRecorder(), req)

				Expect(received).To(HaveLen(len(large)))
				Expect(logs.String()).To(ContainSubstring("[TRUNCATED]"))
				Expect(logs.Len()).To(BeNumerically("<", maxLoggedBodyBytes))
			})
		})

		It("does not touch the body when debug logging is off", func() {
			logs := &bytes.Buffer{}
			infoLogger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
			body := &countingReader{Reader: strings.NewReader("name=a")}
			req := httptest.NewRequest(http.MethodPost, "/simulations/new", body)

			var readBeforeHandler int
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				readBeforeHandler = body.read
				w.WriteHeader(http.StatusOK)
			})

			LoggingMiddleware(infoLogger)(next).ServeHTTP(httptest.NewRecorder(), req)

			Expect(readBeforeHandler).To(BeZero())
			Expect(logs.String()).NotTo(ContainSubstring("incoming request"))
		})
	})
})

type countingReader struct {
	io.Reader
	read int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.read += n
	return n, err
}
