// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/gobuffalo/nulls"

	"github.com/okian/clubhouse/internal/domain/model"
)

// PositionStat is the per-position breakdown of a group of participants.
type PositionStat struct {
	Position   model.Position `json:"position"`
	Count      int            `json:"count"`
	TotalScore float64        `json:"totalScore"`
}

// Team is one named team of a division result.
type Team struct {
	Name          string              `json:"name"`
	Participants  []model.Participant `json:"participants"`
	TotalScore    float64             `json:"totalScore"`
	PositionStats []PositionStat      `json:"positionStats"`
}

// Summary describes the whole participant pool of a division.
type Summary struct {
	TotalParticipants    int                    `json:"totalParticipants"`
	AverageSkill         float64                `json:"averageSkill"`
	PositionDistribution map[model.Position]int `json:"positionDistribution"`
}

// BalanceReport tells whether the balancing pass converged or stopped at the
// iteration cap.
type BalanceReport struct {
	Iterations    int  `json:"iterations"`
	Converged     bool `json:"converged"`
	ScoreSwaps    int  `json:"scoreSwaps"`
	PositionSwaps int  `json:"positionSwaps"`
}

// Result is the output of a team division.
type Result struct {
	Strategy  model.Strategy `json:"strategy"`
	Teams     []Team         `json:"teams"`
	Summary   Summary        `json:"summary"`
	Balancing *BalanceReport `json:"balancing,omitempty"`
}

// Member is the externally visible view of a registered member, including
// the skill derived for divisions.
type Member struct {
	ID             string               `json:"id"`
	FullName       string               `json:"fullName"`
	Position       model.Position       `json:"position"`
	MembershipType model.MembershipType `json:"membershipType"`
	JerseyNumber   nulls.Int            `json:"jerseyNumber"`
	Skill          float64              `json:"skill"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// Formation is a named, persisted snapshot of a division's teams.
type Formation struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	Name      string    `json:"name"`
	Strategy  string    `json:"strategy,omitempty"`
	Teams     []Team    `json:"teams"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobState is the lifecycle state of an asynchronous division job.
type JobState string

// Job states.
const (
	JobPending JobState = "pending"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// JobStatus is the externally visible view of a division job.
type JobStatus struct {
	JobID       string     `json:"jobId"`
	Status      JobState   `json:"status"`
	Result      *Result    `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submittedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
