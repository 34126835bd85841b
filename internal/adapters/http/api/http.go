// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/clubhouse/internal/domain/types"
	"github.com/okian/clubhouse/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DivisionDependencies
	MemberDependencies
	FormationDependencies
	JobDependencies
}

// Result mirrors the division result returned by the divide endpoint.
type Result = types.Result

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	divisionHandler  *DivisionHandler
	memberHandler    *MemberHandler
	formationHandler *FormationHandler
	jobHandler       *JobHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		divisionHandler:  NewDivisionHandler(deps),
		memberHandler:    NewMemberHandler(deps),
		formationHandler: NewFormationHandler(deps),
		jobHandler:       NewJobHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/team-division/divide", MetricsMiddleware(s.divisionHandler.HandleDivide, "divide"))
	mux.HandleFunc("/team-division/formations", MetricsMiddleware(s.formationHandler.HandleCollection, "formations"))
	mux.HandleFunc("/team-division/formations/", MetricsMiddleware(s.formationHandler.HandleItem, "formation"))
	mux.HandleFunc("/team-division/jobs", MetricsMiddleware(s.jobHandler.HandleSubmit, "jobs"))
	mux.HandleFunc("/team-division/jobs/", MetricsMiddleware(s.jobHandler.HandleGet, "job"))
	mux.HandleFunc("/members", MetricsMiddleware(s.memberHandler.HandleCollection, "members"))
	mux.HandleFunc("/members/", MetricsMiddleware(s.memberHandler.HandleItem, "member"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes the matching status and body. Server
// side failures are logged; client errors are not.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed",
			logger.String("code", code),
			logger.Error(err),
		)
	}
	tagErrorCode(w, code)
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// methodNotAllowed answers a request whose method is not in allowed.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, op string, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(r.Context(), w, WrapKind(op, ErrMethodNotAllowed, fmt.Errorf("%s", r.Method)))
}

// pathID extracts the single path segment after prefix.
func pathID(r *http.Request, prefix string) (string, bool) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
