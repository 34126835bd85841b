// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/clubhouse/internal/adapters/mq/queue"
	"github.com/okian/clubhouse/internal/adapters/mq/worker"
	"github.com/okian/clubhouse/internal/adapters/repository"
	"github.com/okian/clubhouse/internal/domain/dedupe"
	"github.com/okian/clubhouse/internal/domain/division"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/skill"
	"github.com/okian/clubhouse/internal/domain/types"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize  = 1024
	defaultDedupeSize = dedupe.DefaultMaxSize
)

// Service implements the API dependencies for team divisions, the member
// registry, saved formations and asynchronous division jobs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	jobs    repository.JobStore
	divider *division.Divider
	rater   skill.Rater

	// Job pipeline, built on Start
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending division jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of remembered job request ids.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the member and formation store. The service does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithJobStore sets where job states are kept.
func WithJobStore(jobs repository.JobStore) Option {
	return func(s *Service) {
		if jobs != nil {
			s.jobs = jobs
		}
	}
}

// WithDivider sets the team divider.
func WithDivider(d *division.Divider) Option {
	return func(s *Service) {
		if d != nil {
			s.divider = d
		}
	}
}

// WithSkillRater sets the heuristic deriving participant skill from members.
func WithSkillRater(r skill.Rater) Option {
	return func(s *Service) {
		if r != nil {
			s.rater = r
		}
	}
}

// New constructs a new Service with default configuration. Without WithStore
// members and formations live in memory.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.jobs == nil {
		s.jobs = repository.NewMemoryJobStore()
	}
	if s.divider == nil {
		s.divider = division.New()
	}
	if s.rater == nil {
		s.rater = skill.NewHeuristicRater()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start builds the job pipeline and starts the worker pool. Synchronous
// divisions and registry calls work without Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting division service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	if n, err := s.store.CountMembers(ctx); err == nil {
		metrics.UpdateMembersTotal(n)
	}

	s.started = true
	s.logger.Info(ctx, "division service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the job queue and waits for the workers to drain it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping division service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "division service stopped")
}

// Divide resolves the requested members and splits them into teams. It fails
// with division.ErrValidation for malformed requests and division.ErrNotFound
// when any participant id is unknown.
func (s *Service) Divide(ctx context.Context, req model.DivisionRequest) (types.Result, error) {
	start := time.Now()
	res, err := s.divide(ctx, req)
	latency := float64(time.Since(start).Microseconds()) / 1000

	label := strategyLabel(req.Strategy)
	if err != nil {
		outcome := outcomeOf(err)
		metrics.RecordDivision(label, outcome, latency)
		if outcome == metrics.OutcomeError {
			metrics.RecordErrorByComponent("service", "divide")
			s.logger.Error(ctx, "division failed", logger.Error(err))
		} else {
			s.logger.Debug(ctx, "division rejected",
				logger.String("outcome", outcome),
				logger.Error(err),
			)
		}
		return types.Result{}, err
	}

	metrics.RecordDivision(label, metrics.OutcomeOK, latency)
	metrics.RecordDivisionParticipants(len(req.ParticipantIDs))
	fields := []logger.Field{
		logger.String("strategy", string(res.Strategy)),
		logger.Int("participants", res.Summary.TotalParticipants),
		logger.Int("teams", len(res.Teams)),
	}
	if b := res.Balancing; b != nil {
		metrics.RecordBalancing(b.Iterations, b.ScoreSwaps, b.PositionSwaps, b.Converged)
		fields = append(fields,
			logger.Int("iterations", b.Iterations),
			logger.Bool("converged", b.Converged),
		)
	}
	s.logger.Debug(ctx, "division computed", fields...)
	return res, nil
}

func (s *Service) divide(ctx context.Context, req model.DivisionRequest) (types.Result, error) {
	strategy, err := division.ValidateRequest(req.ParticipantIDs, req.NumberOfTeams, req.Strategy)
	if err != nil {
		return types.Result{}, err
	}

	members, err := s.store.FindMembers(ctx, req.ParticipantIDs)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.Result{}, fmt.Errorf("%w: %w", division.ErrNotFound, err)
		}
		return types.Result{}, fmt.Errorf("resolve participants: %w", err)
	}

	participants := make([]model.Participant, len(members))
	for i, m := range members {
		participants[i] = skill.Participant(s.rater, m)
	}

	return s.divider.Divide(division.Input{
		Participants:  participants,
		NumberOfTeams: req.NumberOfTeams,
		Strategy:      strategy,
		Seed:          req.Seed,
	})
}

func strategyLabel(raw string) string {
	st, err := model.ParseStrategy(raw)
	if err != nil {
		return "unknown"
	}
	return string(st)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, division.ErrValidation), errors.Is(err, repository.ErrInvalidRecord):
		return metrics.OutcomeValidation
	case errors.Is(err, division.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, repository.ErrDuplicateName):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

// CreateMember registers a member and returns it with its derived skill.
func (s *Service) CreateMember(ctx context.Context, m model.Member) (types.Member, error) {
	created, err := s.store.CreateMember(ctx, m)
	if err != nil {
		return types.Member{}, err
	}
	if n, err := s.store.CountMembers(ctx); err == nil {
		metrics.UpdateMembersTotal(n)
	}
	s.logger.Debug(ctx, "member created",
		logger.String("memberID", created.ID),
		logger.String("position", created.Position.String()),
	)
	return s.memberView(created), nil
}

// GetMember returns one member with its derived skill.
func (s *Service) GetMember(ctx context.Context, id string) (types.Member, error) {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return types.Member{}, err
	}
	return s.memberView(m), nil
}

// ListMembers returns every member in creation order.
func (s *Service) ListMembers(ctx context.Context) ([]types.Member, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Member, len(members))
	for i, m := range members {
		out[i] = s.memberView(m)
	}
	return out, nil
}

func (s *Service) memberView(m model.Member) types.Member {
	return types.Member{
		ID:             m.ID,
		FullName:       m.FullName,
		Position:       m.Position,
		MembershipType: m.MembershipType,
		JerseyNumber:   m.JerseyNumber,
		Skill:          s.rater.Rate(m),
		CreatedAt:      m.CreatedAt,
	}
}

// SaveFormation persists a division's teams under a club-unique name.
func (s *Service) SaveFormation(ctx context.Context, f types.Formation) (types.Formation, error) {
	if f.Strategy != "" {
		st, err := model.ParseStrategy(f.Strategy)
		if err != nil {
			return types.Formation{}, fmt.Errorf("%w: %w", repository.ErrInvalidRecord, err)
		}
		f.Strategy = string(st)
	}
	saved, err := s.store.SaveFormation(ctx, f)
	if err != nil {
		return types.Formation{}, err
	}
	metrics.RecordFormationSaved()
	s.logger.Info(ctx, "formation saved",
		logger.String("formationID", saved.ID),
		logger.String("clubID", saved.ClubID),
		logger.String("name", saved.Name),
	)
	return saved, nil
}

// GetFormation returns a saved formation.
func (s *Service) GetFormation(ctx context.Context, id string) (types.Formation, error) {
	return s.store.GetFormation(ctx, id)
}

// ListFormations returns the formations of clubID, or all when clubID is empty.
func (s *Service) ListFormations(ctx context.Context, clubID string) ([]types.Formation, error) {
	return s.store.ListFormations(ctx, strings.TrimSpace(clubID))
}

// DeleteFormation removes a saved formation.
func (s *Service) DeleteFormation(ctx context.Context, id string) error {
	if err := s.store.DeleteFormation(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "formation deleted", logger.String("formationID", id))
	return nil
}

// SubmitJob validates req and queues it for a worker. A non-empty requestID
// makes the submission idempotent: a repeated id returns the original job and
// duplicate=true. A full queue fails with ErrBackpressure.
func (s *Service) SubmitJob(ctx context.Context, requestID string, req model.DivisionRequest) (status types.JobStatus, duplicate bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.JobStatus{}, false, ErrNotStarted
	}
	if _, err := division.ValidateRequest(req.ParticipantIDs, req.NumberOfTeams, req.Strategy); err != nil {
		return types.JobStatus{}, false, err
	}

	jobID := uuid.NewString()
	if requestID != "" {
		existing, seen := s.deduper.Claim(ctx, requestID, jobID)
		if seen {
			metrics.RecordJobDuplicate()
			st, err := s.jobs.GetJob(ctx, existing)
			if err != nil {
				// claimed by a submission that has not stored its job yet
				st = types.JobStatus{JobID: existing, Status: types.JobPending}
			}
			return st, true, nil
		}
	}

	job := model.DivisionJob{
		JobID:       jobID,
		RequestID:   requestID,
		Request:     req,
		SubmittedAt: time.Now().UTC(),
	}
	status = types.JobStatus{
		JobID:       jobID,
		Status:      types.JobPending,
		SubmittedAt: job.SubmittedAt,
	}
	if err := s.jobs.PutJob(ctx, status); err != nil {
		s.forget(ctx, requestID)
		return types.JobStatus{}, false, fmt.Errorf("store job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.forget(ctx, requestID)
		rejected := status
		rejected.Status = types.JobFailed
		rejected.Error = err.Error()
		_ = s.jobs.PutJob(ctx, rejected)
		if errors.Is(err, queue.ErrQueueFull) {
			s.logger.Warn(ctx, "job queue full", logger.String("jobID", jobID))
			return types.JobStatus{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.JobStatus{}, false, fmt.Errorf("enqueue job: %w", err)
	}

	metrics.RecordJobSubmitted()
	s.logger.Debug(ctx, "job queued",
		logger.String("jobID", jobID),
		logger.String("requestID", requestID),
	)
	return status, false, nil
}

func (s *Service) forget(ctx context.Context, requestID string) {
	if requestID != "" {
		s.deduper.Unrecord(ctx, requestID)
	}
}

// ProcessJob runs a queued division and stores its outcome. It implements
// worker.Processor.
func (s *Service) ProcessJob(ctx context.Context, job model.DivisionJob) error {
	st := types.JobStatus{
		JobID:       job.JobID,
		Status:      types.JobRunning,
		SubmittedAt: job.SubmittedAt,
	}
	if err := s.jobs.PutJob(ctx, st); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	res, divErr := s.Divide(ctx, job.Request)
	completed := time.Now().UTC()
	st.CompletedAt = &completed
	if divErr != nil {
		st.Status = types.JobFailed
		st.Error = divErr.Error()
	} else {
		st.Status = types.JobDone
		st.Result = &res
	}

	if err := s.jobs.PutJob(ctx, st); err != nil {
		return fmt.Errorf("store job result: %w", err)
	}
	metrics.RecordJobCompleted(string(st.Status))
	return divErr
}

// Job returns the state of a submitted job.
func (s *Service) Job(ctx context.Context, id string) (types.JobStatus, error) {
	return s.jobs.GetJob(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if n, err := s.store.CountMembers(ctx); err == nil {
		stats["totalMembers"] = n
		metrics.UpdateMembersTotal(n)
	}

	jobs := make(map[string]int)
	for state, n := range s.jobs.CountJobs(ctx) {
		jobs[string(state)] = n
	}
	stats["jobs"] = jobs

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["activeWorkers"] = s.pool.Active()
		stats["dedupeEntries"] = s.deduper.Size()
	}

	return stats
}
