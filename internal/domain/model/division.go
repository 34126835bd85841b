package model

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects the partitioning algorithm variant.
type Strategy string

// Balance strategies.
const (
	StrategyRandom           Strategy = "RANDOM"
	StrategySkillBalanced    Strategy = "SKILL_BALANCED"
	StrategyPositionBalanced Strategy = "POSITION_BALANCED"
	StrategyBalanced         Strategy = "BALANCED"
)

// Strategies lists every strategy in declaration order.
var Strategies = []Strategy{StrategyRandom, StrategySkillBalanced, StrategyPositionBalanced, StrategyBalanced}

// ParseStrategy parses a strategy name. An empty name selects StrategyBalanced.
func ParseStrategy(s string) (Strategy, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return StrategyBalanced, nil
	}
	for _, st := range Strategies {
		if string(st) == name {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// DivisionRequest asks for the given members to be split into teams.
type DivisionRequest struct {
	ParticipantIDs []string
	NumberOfTeams  int
	Strategy       string
	Seed           *int64 // optional; fixes the shuffle for reproducible output
}

// DivisionJob is a division request queued for asynchronous processing.
type DivisionJob struct {
	JobID       string
	RequestID   string // client supplied idempotency key, may be empty
	Request     DivisionRequest
	SubmittedAt time.Time
}
