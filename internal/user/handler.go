package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// CurrentUserResponse is the body of GET /api/v1/users/me.
type CurrentUserResponse struct {
	*User
	IsAdmin bool `json:"is_admin"`
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	session := internal.SessionUserFromContext(r.Context())
	if session == nil {
		h.RenderError(w, r, internal.ErrAuthenticationRequired)
		return
	}

	u, err := h.Service.GetByID(r.Context(), session.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service GetByID failed", "user_id", session.ID, "error", err)
		h.RenderError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CurrentUserResponse{User: u, IsAdmin: session.IsAdmin})
}
