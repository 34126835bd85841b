package api

import (
	"context"
	"net/http"

	"github.com/okian/clubhouse/internal/domain/types"
)

// FormationDependencies defines the interface for saved formations.
type FormationDependencies interface {
	SaveFormation(ctx context.Context, f types.Formation) (types.Formation, error)
	GetFormation(ctx context.Context, id string) (types.Formation, error)
	ListFormations(ctx context.Context, clubID string) ([]types.Formation, error)
	DeleteFormation(ctx context.Context, id string) error
}

// formationRequest mirrors the body of POST /team-division/formations.
type formationRequest struct {
	ClubID   string       `json:"clubId"`
	Name     string       `json:"name"`
	Strategy string       `json:"strategy,omitempty"`
	Teams    []types.Team `json:"teams"`
}

// FormationHandler handles saved formation requests.
type FormationHandler struct {
	deps FormationDependencies
}

// NewFormationHandler creates a new formation handler.
func NewFormationHandler(deps FormationDependencies) *FormationHandler {
	return &FormationHandler{deps: deps}
}

// HandleCollection handles POST and GET /team-division/formations.
func (h *FormationHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.save(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w, r, "api.formations", http.MethodGet, http.MethodPost)
	}
}

func (h *FormationHandler) save(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_formation"
	var req formationRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	saved, err := h.deps.SaveFormation(r.Context(), types.Formation{
		ClubID:   req.ClubID,
		Name:     req.Name,
		Strategy: req.Strategy,
		Teams:    req.Teams,
	})
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *FormationHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListFormations(r.Context(), r.URL.Query().Get("clubId"))
	if err != nil {
		writeError(r.Context(), w, Wrap("api.list_formations", err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleItem handles GET and DELETE /team-division/formations/{id}.
func (h *FormationHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.formation"
	id, ok := pathID(r, "/team-division/formations/")
	if !ok {
		writeError(r.Context(), w, NewKind(op, ErrBadRequest))
		return
	}
	switch r.Method {
	case http.MethodGet:
		f, err := h.deps.GetFormation(r.Context(), id)
		if err != nil {
			writeError(r.Context(), w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, f)
	case http.MethodDelete:
		if err := h.deps.DeleteFormation(r.Context(), id); err != nil {
			writeError(r.Context(), w, Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, op, http.MethodGet, http.MethodDelete)
	}
}
