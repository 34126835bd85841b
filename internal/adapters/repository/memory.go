package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

const backendMemory = "memory"

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	cfg storeConfig

	mu         sync.RWMutex
	members    map[string]model.Member
	memberIDs  []string // creation order
	formations map[string]types.Formation
	formIDs    []string          // creation order
	formByName map[string]string // club/name key -> formation id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		cfg:        defaultStoreConfig(opts),
		members:    make(map[string]model.Member),
		formations: make(map[string]types.Formation),
		formByName: make(map[string]string),
	}
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// normalizeMember validates m and canonicalizes its membership type.
func normalizeMember(m model.Member) (model.Member, error) {
	m.FullName = strings.TrimSpace(m.FullName)
	if m.FullName == "" {
		return m, fmt.Errorf("%w: member full name is required", ErrInvalidRecord)
	}
	if !m.Position.Valid() {
		return m, fmt.Errorf("%w: %w", ErrInvalidRecord, model.ErrUnknownPosition)
	}
	mt, err := model.ParseMembershipType(string(m.MembershipType))
	if err != nil {
		return m, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	m.MembershipType = mt
	return m, nil
}

func validateFormation(f types.Formation) error {
	if strings.TrimSpace(f.ClubID) == "" || strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: formation club id and name are required", ErrInvalidRecord)
	}
	return nil
}

// CreateMember implements MemberRegistry.
func (s *MemoryStore) CreateMember(_ context.Context, m model.Member) (out model.Member, err error) {
	defer func(start time.Time) { observe(backendMemory, "create_member", start, err) }(time.Now())

	if m, err = normalizeMember(m); err != nil {
		return model.Member{}, err
	}
	if m.ID == "" {
		m.ID = s.cfg.newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.cfg.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.ID]; ok {
		return model.Member{}, fmt.Errorf("%w: member %q already exists", ErrInvalidRecord, m.ID)
	}
	s.members[m.ID] = m
	s.memberIDs = append(s.memberIDs, m.ID)
	return m, nil
}

// GetMember implements MemberRegistry.
func (s *MemoryStore) GetMember(_ context.Context, id string) (out model.Member, err error) {
	defer func(start time.Time) { observe(backendMemory, "get_member", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return model.Member{}, fmt.Errorf("%w: member %q", ErrNotFound, id)
	}
	return m, nil
}

// ListMembers implements MemberRegistry.
func (s *MemoryStore) ListMembers(_ context.Context) ([]model.Member, error) {
	defer func(start time.Time) { observe(backendMemory, "list_members", start, nil) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Member, 0, len(s.memberIDs))
	for _, id := range s.memberIDs {
		out = append(out, s.members[id])
	}
	return out, nil
}

// FindMembers implements MemberRegistry.
func (s *MemoryStore) FindMembers(_ context.Context, ids []string) (out []model.Member, err error) {
	defer func(start time.Time) { observe(backendMemory, "find_members", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out = make([]model.Member, 0, len(ids))
	var missing []string
	for _, id := range ids {
		m, ok := s.members[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, m)
	}
	if len(missing) > 0 {
		return nil, missingError(missing)
	}
	return out, nil
}

// CountMembers implements MemberRegistry.
func (s *MemoryStore) CountMembers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members), nil
}

func formationKey(clubID, name string) string {
	return clubID + "\x00" + name
}

// SaveFormation implements FormationStore.
func (s *MemoryStore) SaveFormation(_ context.Context, f types.Formation) (out types.Formation, err error) {
	defer func(start time.Time) { observe(backendMemory, "save_formation", start, err) }(time.Now())

	if err := validateFormation(f); err != nil {
		return types.Formation{}, err
	}
	if f.ID == "" {
		f.ID = s.cfg.newID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.cfg.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := formationKey(f.ClubID, f.Name)
	if _, ok := s.formByName[key]; ok {
		return types.Formation{}, fmt.Errorf("%w: %q", ErrDuplicateName, f.Name)
	}
	s.formations[f.ID] = f
	s.formIDs = append(s.formIDs, f.ID)
	s.formByName[key] = f.ID
	return f, nil
}

// GetFormation implements FormationStore.
func (s *MemoryStore) GetFormation(_ context.Context, id string) (out types.Formation, err error) {
	defer func(start time.Time) { observe(backendMemory, "get_formation", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.formations[id]
	if !ok {
		return types.Formation{}, fmt.Errorf("%w: formation %q", ErrNotFound, id)
	}
	return f, nil
}

// ListFormations implements FormationStore.
func (s *MemoryStore) ListFormations(_ context.Context, clubID string) ([]types.Formation, error) {
	defer func(start time.Time) { observe(backendMemory, "list_formations", start, nil) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Formation, 0)
	for _, id := range s.formIDs {
		f := s.formations[id]
		if clubID == "" || f.ClubID == clubID {
			out = append(out, f)
		}
	}
	return out, nil
}

// DeleteFormation implements FormationStore.
func (s *MemoryStore) DeleteFormation(_ context.Context, id string) (err error) {
	defer func(start time.Time) { observe(backendMemory, "delete_formation", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.formations[id]
	if !ok {
		return fmt.Errorf("%w: formation %q", ErrNotFound, id)
	}
	delete(s.formations, id)
	delete(s.formByName, formationKey(f.ClubID, f.Name))
	for i, fid := range s.formIDs {
		if fid == id {
			s.formIDs = append(s.formIDs[:i], s.formIDs[i+1:]...)
			break
		}
	}
	return nil
}

func missingError(ids []string) error {
	return fmt.Errorf("%w: unknown participant ids %s", ErrNotFound, strings.Join(ids, ", "))
}
