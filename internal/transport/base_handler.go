package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/pkg/logger"
	"github.com/go-chi/chi"
)

const maxBodyBytes = 1 << 20

// Renderer executes a named page template.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// FormBinder is implemented by request DTOs that can be filled from an
// url-encoded form as well as from JSON.
type FormBinder interface {
	BindForm(form url.Values)
}

// ActionData is the payload every mutating endpoint answers with.
type ActionData struct {
	Errors  map[string]string `json:"errors,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// Page is what the layout template receives.
type Page struct {
	Title   string
	User    *internal.SessionUser
	Path    string
	Message string
	Errors  map[string]string
	Form    url.Values
	Data    any
}

// Error returns the message for a field, for use from templates.
func (p Page) Error(field string) string {
	return p.Errors[field]
}

// Value returns the submitted value of a form field, for use from templates.
func (p Page) Value(field string) string {
	if p.Form == nil {
		return ""
	}
	return p.Form.Get(field)
}

// View describes a page response.
type View struct {
	Template string
	Title    string
	Data     any
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	Views  Renderer
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, views Renderer) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg, Views: views}
}

// WantsJSON reports whether the client asked for JSON rather than HTML.
func WantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return isJSONBody(r)
}

func isJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// Decode fills dst from a JSON body or from the posted form.
func (h *BaseHandler) Decode(w http.ResponseWriter, r *http.Request, dst FormBinder) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return internal.NewValidationError("Invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return internal.NewValidationError("Invalid form data", internal.ErrCodeValidationFailed).WithCause(err)
	}
	dst.BindForm(r.PostForm)
	return nil
}

// Render writes a page as HTML, or its data as JSON for API clients.
func (h *BaseHandler) Render(w http.ResponseWriter, r *http.Request, status int, view View, action *ActionData) {
	if WantsJSON(r) {
		if action != nil {
			h.WriteJSON(w, status, action)
			return
		}
		h.WriteJSON(w, status, view.Data)
		return
	}

	page := Page{
		Title: view.Title,
		User:  internal.SessionUserFromContext(r.Context()),
		Path:  r.URL.Path,
		Form:  r.PostForm,
		Data:  view.Data,
	}
	if action != nil {
		page.Message = action.Message
		page.Errors = action.Errors
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.Views.Render(w, view.Template, page); err != nil {
		h.Logger.Error("failed to render page", "template", view.Template, "error", err)
	}
}

// Redirect sends a 303 so browsers follow up with a GET.
func (h *BaseHandler) Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// ActionFromError maps an error to the status and payload of a failed action.
func (h *BaseHandler) ActionFromError(err error) (int, *ActionData) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("action failed", "error", err)
			return appErr.StatusCode, &ActionData{Errors: map[string]string{internal.FieldCommon: "Something went wrong, please try again"}}
		}
		return appErr.StatusCode, &ActionData{Errors: appErr.FieldErrors()}
	}
	h.Logger.Error("action failed", "error", err)
	return http.StatusInternalServerError, &ActionData{Errors: map[string]string{internal.FieldCommon: "Something went wrong, please try again"}}
}

// RenderError renders a full-page error for GET requests.
func (h *BaseHandler) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, action := h.ActionFromError(err)
	if WantsJSON(r) {
		h.WriteJSON(w, status, action)
		return
	}
	message := action.Errors[internal.FieldCommon]
	if message == "" {
		message = http.StatusText(status)
	}
	h.Render(w, r, status, View{Template: "error", Title: http.StatusText(status), Data: message}, nil)
}

// PathID parses a numeric chi URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewNotFoundError(fmt.Sprintf("Invalid id %q", raw), internal.ErrCodeSimulationNotFound)
	}
	return id, nil
}

// ParseID reads an optional id from a form value. Only an empty value is
// missing; anything else is passed on so the lookup reports it as not found.
func ParseID(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		id = 0
	}
	return &id
}
