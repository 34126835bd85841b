package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/clubhouse/internal/domain/types"
)

// MemoryJobStore is an in-memory JobStore. Job states are process local and
// are lost on restart.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]types.JobStatus
}

// NewMemoryJobStore creates an empty job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]types.JobStatus)}
}

// PutJob implements JobStore. It inserts or replaces the job's state.
func (s *MemoryJobStore) PutJob(_ context.Context, st types.JobStatus) error {
	if st.JobID == "" {
		return fmt.Errorf("%w: job id is required", ErrInvalidRecord)
	}
	s.mu.Lock()
	s.jobs[st.JobID] = st
	s.mu.Unlock()
	return nil
}

// GetJob implements JobStore.
func (s *MemoryJobStore) GetJob(_ context.Context, id string) (types.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.jobs[id]
	if !ok {
		return types.JobStatus{}, fmt.Errorf("%w: job %q", ErrNotFound, id)
	}
	return st, nil
}

// CountJobs implements JobStore.
func (s *MemoryJobStore) CountJobs(_ context.Context) map[types.JobState]int {
	counts := map[types.JobState]int{
		types.JobPending: 0,
		types.JobRunning: 0,
		types.JobDone:    0,
		types.JobFailed:  0,
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.jobs {
		counts[st.Status]++
	}
	return counts
}
