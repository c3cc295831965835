package simulation

import (
	"context"
	"fmt"
	"net/http"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	"github.com/frahmantamala/salary-simulator/internal/transport"
)

const (
	MessageUpdated = "The simulation has been successfully updated"
	MessageDeleted = "The simulation has been successfully deleted"
	MessageCreated = "The simulation has been successfully created"

	homeRecentLimit = 5
)

type ServiceAPI interface {
	List(ctx context.Context, userID int64) ([]*Summary, error)
	Recent(ctx context.Context, userID int64, limit int) ([]*Summary, error)
	Get(ctx context.Context, id, userID int64, withRelations bool) (*Simulation, error)
	Create(ctx context.Context, userID int64, in Input) (*Simulation, error)
	Update(ctx context.Context, id, userID int64, in Input) (*Simulation, error)
	Refresh(ctx context.Context, id, userID int64) (*Simulation, error)
	Delete(ctx context.Context, id, userID int64) error
}

// CatalogProvider feeds the select options of the simulation forms.
type CatalogProvider interface {
	ListAll(ctx context.Context) (*reference.Catalog, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Catalog CatalogProvider
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, catalog CatalogProvider) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Catalog:     catalog,
	}
}

// Home renders the landing page; signed-in users also see their latest simulations.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page := &HomePage{}
	if userID := internal.UserIDFromContext(r.Context()); userID != 0 {
		recent, err := h.Service.Recent(r.Context(), userID, homeRecentLimit)
		if err != nil {
			h.RenderError(w, r, err)
			return
		}
		page.Simulations = recent
	}
	h.Render(w, r, http.StatusOK, transport.View{Template: "index", Data: page}, nil)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, nil)
}

// ListAction handles the refresh and delete buttons of the list page.
func (h *Handler) ListAction(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	var req ListActionRequest
	if err := h.Decode(w, r, &req); err != nil {
		h.failList(w, r, err)
		return
	}
	if req.ID == nil {
		h.failList(w, r, internal.NewValidationError("Id is required", internal.ErrCodeRequiredField))
		return
	}

	var message string
	switch req.Intent {
	case IntentRefresh:
		if _, err := h.Service.Refresh(r.Context(), *req.ID, userID); err != nil {
			h.failList(w, r, err)
			return
		}
		message = MessageUpdated
	case IntentDelete:
		if err := h.Service.Delete(r.Context(), *req.ID, userID); err != nil {
			h.failList(w, r, err)
			return
		}
		message = MessageDeleted
	default:
		h.failList(w, r, internal.NewInvalidIntentError(req.Intent))
		return
	}

	h.renderList(w, r, http.StatusOK, &transport.ActionData{Message: message})
}

func (h *Handler) failList(w http.ResponseWriter, r *http.Request, err error) {
	status, action := h.ActionFromError(err)
	h.renderList(w, r, status, action)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, status int, action *transport.ActionData) {
	simulations, err := h.Service.List(r.Context(), internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	view := transport.View{Template: "simulations", Title: "Simulations", Data: &ListPage{Simulations: simulations}}
	h.Render(w, r, status, view, action)
}

func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Catalog.ListAll(r.Context())
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	h.Render(w, r, http.StatusOK, transport.View{Template: "new", Title: "New simulation", Data: &FormPage{Catalog: catalog}}, nil)
}

// Create stores a new simulation and sends the browser to its detail page.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	var req SimulationRequest
	if err := h.Decode(w, r, &req); err != nil {
		h.failForm(w, r, "new", "New simulation", nil, &req, err)
		return
	}

	sim, err := h.Service.Create(r.Context(), userID, req.ToInput())
	if err != nil {
		h.failForm(w, r, "new", "New simulation", nil, &req, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusCreated, &transport.ActionData{Message: MessageCreated, Data: sim})
		return
	}
	h.Redirect(w, r, fmt.Sprintf("/simulations/%d", sim.ID))
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	sim, err := h.Service.Get(r.Context(), id, internal.UserIDFromContext(r.Context()), true)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	h.Render(w, r, http.StatusOK, transport.View{Template: "detail", Title: sim.Name, Data: sim}, nil)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	sim, err := h.Service.Get(r.Context(), id, internal.UserIDFromContext(r.Context()), false)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	h.renderEdit(w, r, http.StatusOK, sim, nil)
}

// EditAction handles the calculate and refresh buttons of the edit page.
func (h *Handler) EditAction(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	userID := internal.UserIDFromContext(r.Context())

	var req SimulationRequest
	if err := h.Decode(w, r, &req); err != nil {
		h.failEdit(w, r, id, &req, err)
		return
	}

	var sim *Simulation
	switch req.Intent {
	case IntentCalculate:
		sim, err = h.Service.Update(r.Context(), id, userID, req.ToInput())
	case IntentRefresh:
		sim, err = h.Service.Refresh(r.Context(), id, userID)
	default:
		err = internal.NewInvalidIntentError(req.Intent)
	}
	if err != nil {
		h.failEdit(w, r, id, &req, err)
		return
	}

	h.renderEdit(w, r, http.StatusOK, sim, &transport.ActionData{Message: MessageUpdated, Data: sim})
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, status int, sim *Simulation, action *transport.ActionData) {
	catalog, err := h.Catalog.ListAll(r.Context())
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	page := &FormPage{Catalog: catalog}
	page.fillFromSimulation(sim)
	h.Render(w, r, status, transport.View{Template: "edit", Title: "Edit simulation", Data: page}, action)
}

// failEdit re-renders the edit page with the rejected values. A simulation
// that cannot be loaded any more is reported as a plain error page.
func (h *Handler) failEdit(w http.ResponseWriter, r *http.Request, id int64, req *SimulationRequest, cause error) {
	if appErr, ok := internal.IsAppError(cause); ok && appErr.Is(internal.ErrSimulationNotFound) {
		h.RenderError(w, r, cause)
		return
	}
	sim, err := h.Service.Get(r.Context(), id, internal.UserIDFromContext(r.Context()), false)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	h.failForm(w, r, "edit", "Edit simulation", sim, req, cause)
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, template, title string, sim *Simulation, req *SimulationRequest, cause error) {
	status, action := h.ActionFromError(cause)
	if transport.WantsJSON(r) {
		h.WriteJSON(w, status, action)
		return
	}

	catalog, err := h.Catalog.ListAll(r.Context())
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	page := &FormPage{Catalog: catalog, Simulation: sim}
	page.fillFromRequest(req)
	h.Render(w, r, status, transport.View{Template: template, Title: title, Data: page}, action)
}
