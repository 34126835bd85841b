package api

import (
	"context"
	"net/http"

	"github.com/okian/clubhouse/internal/domain/model"
)

// DivisionDependencies defines the interface for synchronous divisions.
type DivisionDependencies interface {
	Divide(ctx context.Context, req model.DivisionRequest) (Result, error)
}

// divideRequest mirrors the body of POST /team-division/divide.
type divideRequest struct {
	ParticipantIDs  []string `json:"participantIds"`
	NumberOfTeams   int      `json:"numberOfTeams"`
	BalanceStrategy string   `json:"balanceStrategy,omitempty"`
	Seed            *int64   `json:"seed,omitempty"`
}

func (d divideRequest) toModel() model.DivisionRequest {
	return model.DivisionRequest{
		ParticipantIDs: d.ParticipantIDs,
		NumberOfTeams:  d.NumberOfTeams,
		Strategy:       d.BalanceStrategy,
		Seed:           d.Seed,
	}
}

// DivisionHandler handles division requests.
type DivisionHandler struct {
	deps DivisionDependencies
}

// NewDivisionHandler creates a new division handler.
func NewDivisionHandler(deps DivisionDependencies) *DivisionHandler {
	return &DivisionHandler{deps: deps}
}

// HandleDivide handles POST /team-division/divide requests.
func (h *DivisionHandler) HandleDivide(w http.ResponseWriter, r *http.Request) {
	const op = "api.divide"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, op, http.MethodPost)
		return
	}
	var req divideRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	res, err := h.deps.Divide(r.Context(), req.toModel())
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
