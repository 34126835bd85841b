package api

import (
	"context"
	"net/http"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

// JobDependencies defines the interface for asynchronous division jobs.
type JobDependencies interface {
	// SubmitJob queues req. A repeated requestID returns the original job
	// with duplicate set.
	SubmitJob(ctx context.Context, requestID string, req model.DivisionRequest) (types.JobStatus, bool, error)
	Job(ctx context.Context, id string) (types.JobStatus, error)
}

// jobRequest mirrors the body of POST /team-division/jobs.
type jobRequest struct {
	RequestID string `json:"requestId,omitempty"`
	divideRequest
}

type jobAck struct {
	JobID     string         `json:"jobId"`
	Status    types.JobState `json:"status"`
	Duplicate bool           `json:"duplicate"`
}

// JobHandler handles division job requests.
type JobHandler struct {
	deps JobDependencies
}

// NewJobHandler creates a new job handler.
func NewJobHandler(deps JobDependencies) *JobHandler {
	return &JobHandler{deps: deps}
}

// HandleSubmit handles POST /team-division/jobs requests.
func (h *JobHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_job"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, op, http.MethodPost)
		return
	}
	var req jobRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	st, duplicate, err := h.deps.SubmitJob(r.Context(), req.RequestID, req.toModel())
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, jobAck{JobID: st.JobID, Status: st.Status, Duplicate: duplicate})
}

// HandleGet handles GET /team-division/jobs/{id} requests.
func (h *JobHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, op, http.MethodGet)
		return
	}
	id, ok := pathID(r, "/team-division/jobs/")
	if !ok {
		writeError(r.Context(), w, NewKind(op, ErrBadRequest))
		return
	}
	st, err := h.deps.Job(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
