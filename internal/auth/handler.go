package auth

import (
	"net/http"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/internal/user"
)

const (
	joinRedirectDefault  = "/"
	loginRedirectDefault = "/simulations"
)

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Sessions *SessionManager
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, sessions *SessionManager) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Sessions:    sessions,
	}
}

func (h *Handler) JoinPage(w http.ResponseWriter, r *http.Request) {
	h.authPage(w, r, "join", "Sign up")
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.authPage(w, r, "login", "Log in")
}

// authPage renders the join or login form; signed-in users go home instead.
func (h *Handler) authPage(w http.ResponseWriter, r *http.Request, template, title string) {
	if internal.SessionUserFromContext(r.Context()) != nil {
		h.Redirect(w, r, "/")
		return
	}
	page := &AuthPage{RedirectTo: r.URL.Query().Get("redirectTo")}
	h.Render(w, r, http.StatusOK, transport.View{Template: template, Title: title, Data: page}, nil)
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var dto JoinDTO
	if err := h.Decode(w, r, &dto); err != nil {
		h.fail(w, r, "join", "Sign up", dto.RedirectTo, err)
		return
	}

	u, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.fail(w, r, "join", "Sign up", dto.RedirectTo, err)
		return
	}

	h.startSession(w, r, u, false, SafeRedirect(dto.RedirectTo, joinRedirectDefault), http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.Decode(w, r, &dto); err != nil {
		h.fail(w, r, "login", "Log in", dto.RedirectTo, err)
		return
	}

	u, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.fail(w, r, "login", "Log in", dto.RedirectTo, err)
		return
	}

	h.startSession(w, r, u, dto.Remember, SafeRedirect(dto.RedirectTo, loginRedirectDefault), http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Destroy(w)
	if transport.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.Redirect(w, r, "/")
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u *user.User, remember bool, redirectTo string, jsonStatus int) {
	if err := h.Sessions.CreateUserSession(w, u, remember); err != nil {
		h.Logger.Error("failed to create session", "user_id", u.ID, "error", err)
		h.RenderError(w, r, internal.NewInternalError("failed to create session", err))
		return
	}

	h.Logger.Info("session created", "user_id", u.ID, "remember", remember)
	if transport.WantsJSON(r) {
		h.WriteJSON(w, jsonStatus, &transport.ActionData{Data: u})
		return
	}
	h.Redirect(w, r, redirectTo)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, template, title, redirectTo string, err error) {
	status, action := h.ActionFromError(err)
	page := &AuthPage{RedirectTo: redirectTo}
	h.Render(w, r, status, transport.View{Template: template, Title: title, Data: page}, action)
}
