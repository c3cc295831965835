package settings

import (
	"context"
	"net/http"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	"github.com/frahmantamala/salary-simulator/internal/transport"
)

const (
	MessageSaved     = "The settings have been successfully updated"
	MessageRefreshed = "All the simulations has been successfully updated"
)

type ServiceAPI interface {
	ListAll(ctx context.Context) (*reference.Catalog, error)
	SaveWeights(ctx context.Context, updates []reference.WeightUpdate) error
	RefreshAllSimulationsForUser(ctx context.Context, userID int64) (int, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// RefreshResult is returned to JSON clients after a bulk refresh.
type RefreshResult struct {
	Count int `json:"count"`
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, nil)
}

// Action handles the save and refresh buttons of the settings page.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := h.Decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	switch req.Intent {
	case IntentSave:
		updates, err := req.ToUpdates()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.Service.SaveWeights(r.Context(), updates); err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, &transport.ActionData{Message: MessageSaved})
	case IntentRefresh:
		count, err := h.Service.RefreshAllSimulationsForUser(r.Context(), internal.UserIDFromContext(r.Context()))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, &transport.ActionData{Message: MessageRefreshed, Data: RefreshResult{Count: count}})
	default:
		h.fail(w, r, internal.NewInvalidIntentError(req.Intent))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, action := h.ActionFromError(err)
	h.render(w, r, status, action)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, action *transport.ActionData) {
	catalog, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	h.Render(w, r, status, transport.View{Template: "settings", Title: "Settings", Data: &SettingsPage{Catalog: catalog}}, action)
}
