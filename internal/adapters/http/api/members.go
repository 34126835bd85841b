package api

import (
	"context"
	"net/http"

	"github.com/gobuffalo/nulls"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

// MemberDependencies defines the interface for the member registry.
type MemberDependencies interface {
	CreateMember(ctx context.Context, m model.Member) (types.Member, error)
	GetMember(ctx context.Context, id string) (types.Member, error)
	ListMembers(ctx context.Context) ([]types.Member, error)
}

// memberRequest mirrors the body of POST /members.
type memberRequest struct {
	FullName       string    `json:"fullName"`
	Position       string    `json:"position"`
	MembershipType string    `json:"membershipType"`
	JerseyNumber   nulls.Int `json:"jerseyNumber"`
}

func (m memberRequest) toModel() (model.Member, error) {
	pos, err := model.ParsePosition(m.Position)
	if err != nil {
		return model.Member{}, err
	}
	mt, err := model.ParseMembershipType(m.MembershipType)
	if err != nil {
		return model.Member{}, err
	}
	return model.Member{
		FullName:       m.FullName,
		Position:       pos,
		MembershipType: mt,
		JerseyNumber:   m.JerseyNumber,
	}, nil
}

// MemberHandler handles member registry requests.
type MemberHandler struct {
	deps MemberDependencies
}

// NewMemberHandler creates a new member handler.
func NewMemberHandler(deps MemberDependencies) *MemberHandler {
	return &MemberHandler{deps: deps}
}

// HandleCollection handles POST /members and GET /members.
func (h *MemberHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w, r, "api.members", http.MethodGet, http.MethodPost)
	}
}

func (h *MemberHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_member"
	var req memberRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	m, err := req.toModel()
	if err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	created, err := h.deps.CreateMember(r.Context(), m)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MemberHandler) list(w http.ResponseWriter, r *http.Request) {
	members, err := h.deps.ListMembers(r.Context())
	if err != nil {
		writeError(r.Context(), w, Wrap("api.list_members", err))
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// HandleItem handles GET /members/{id}.
func (h *MemberHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_member"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, op, http.MethodGet)
		return
	}
	id, ok := pathID(r, "/members/")
	if !ok {
		writeError(r.Context(), w, NewKind(op, ErrBadRequest))
		return
	}
	m, err := h.deps.GetMember(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}
