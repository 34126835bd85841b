package testdivisions

import (
	"io"
	"time"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

// Config holds configuration for the division check.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumMembers int           // Number of members to register
	MinTeams   int           // Smallest team count to try
	MaxTeams   int           // Largest team count to try
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Roster and division seed
	UseJobs    bool          // Run divisions through the job queue
	OutputFile string        // Output file for the report
	LogFile    string        // Log file for check output
	Verbose    bool          // Enable verbose logging
	Out        io.Writer     // Report destination, stdout when nil
}

// MemberRequest is the body of POST /members.
type MemberRequest struct {
	FullName       string `json:"fullName"`
	Position       string `json:"position"`
	MembershipType string `json:"membershipType"`
	JerseyNumber   *int   `json:"jerseyNumber,omitempty"`
}

// DivideRequest is the body of POST /team-division/divide and /team-division/jobs.
type DivideRequest struct {
	RequestID       string   `json:"requestId,omitempty"`
	ParticipantIDs  []string `json:"participantIds"`
	NumberOfTeams   int      `json:"numberOfTeams"`
	BalanceStrategy string   `json:"balanceStrategy"`
	Seed            *int64   `json:"seed,omitempty"`
}

// Case is one strategy and team count combination.
type Case struct {
	Strategy model.Strategy `json:"strategy"`
	Teams    int            `json:"teams"`
}

// Outcome is the checked result of one case.
type Outcome struct {
	Case
	Result   *types.Result `json:"result,omitempty"`
	Problems []string      `json:"problems,omitempty"`
	Err      string        `json:"error,omitempty"`
	Latency  time.Duration `json:"latency"`
}

// Passed reports whether the case ran and verified cleanly.
func (o Outcome) Passed() bool { return o.Err == "" && len(o.Problems) == 0 }

// Stats holds check statistics
type Stats struct {
	MembersGenerated int
	MembersCreated   int
	MembersFailed    int
	DivisionsRun     int
	DivisionsPassed  int
	DivisionsFailed  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
