// Package repository persists club members, saved formations and division
// job states.
package repository

import (
	"context"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

// MemberRegistry resolves participant ids to registered members.
type MemberRegistry interface {
	// CreateMember stores a new member. ID and CreatedAt are assigned when empty.
	CreateMember(ctx context.Context, m model.Member) (model.Member, error)
	// GetMember returns ErrNotFound if the id is unknown.
	GetMember(ctx context.Context, id string) (model.Member, error)
	// ListMembers returns all members in creation order.
	ListMembers(ctx context.Context) ([]model.Member, error)
	// FindMembers returns the members for ids in the order of ids. If any id is
	// unknown it returns an error wrapping ErrNotFound and no members.
	FindMembers(ctx context.Context, ids []string) ([]model.Member, error)
	// CountMembers returns the number of registered members.
	CountMembers(ctx context.Context) (int, error)
}

// FormationStore persists named division results per club.
type FormationStore interface {
	// SaveFormation stores f. The pair (ClubID, Name) must be unique,
	// otherwise ErrDuplicateName is returned.
	SaveFormation(ctx context.Context, f types.Formation) (types.Formation, error)
	GetFormation(ctx context.Context, id string) (types.Formation, error)
	// ListFormations returns the club's formations in creation order. An
	// empty clubID lists every formation.
	ListFormations(ctx context.Context, clubID string) ([]types.Formation, error)
	DeleteFormation(ctx context.Context, id string) error
}

// Store bundles the persistent stores behind one backend.
type Store interface {
	MemberRegistry
	FormationStore
	Close() error
}

// JobStore keeps the state of asynchronous division jobs.
type JobStore interface {
	PutJob(ctx context.Context, st types.JobStatus) error
	GetJob(ctx context.Context, id string) (types.JobStatus, error)
	// CountJobs returns the number of jobs per state.
	CountJobs(ctx context.Context) map[types.JobState]int
}
