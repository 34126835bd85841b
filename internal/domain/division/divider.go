// Package division partitions a pool of participants into balanced teams.
//
// Four strategies are offered. RANDOM, SKILL_BALANCED and POSITION_BALANCED
// are single-pass deals; BALANCED deals an even split and then refines it with
// a greedy swap search bounded by an iteration cap. The search is a heuristic:
// it stops at the first state where no qualifying swap exists, which is not
// necessarily the optimum.
package division

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

// Team count bounds accepted by Divide. The upper bound is product policy.
const (
	MinTeams = 2
	MaxTeams = 6
)

// Default balancing parameters.
const (
	DefaultMaxIterations     = 1000
	DefaultScoreThreshold    = 2.0
	DefaultPositionThreshold = 1
)

// Input is one division request with its participants already resolved.
type Input struct {
	Participants  []model.Participant
	NumberOfTeams int
	Strategy      model.Strategy // empty selects StrategyBalanced
	Seed          *int64         // overrides the configured random source for this call
}

// Divider splits participants into teams. It only holds configuration, so a
// single Divider may serve concurrent calls.
type Divider struct {
	newSource         func() rand.Source
	maxIterations     int
	scoreThreshold    float64
	positionThreshold int
}

// New creates a Divider with configuration options.
func New(opts ...Option) *Divider {
	d := &Divider{
		newSource: func() rand.Source {
			return rand.NewSource(time.Now().UnixNano())
		},
		maxIterations:     DefaultMaxIterations,
		scoreThreshold:    DefaultScoreThreshold,
		positionThreshold: DefaultPositionThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Divide partitions in.Participants into in.NumberOfTeams teams. Every
// participant ends up in exactly one team. No partial result is returned on
// error.
func (d *Divider) Divide(in Input) (types.Result, error) {
	strategy, err := d.validate(in)
	if err != nil {
		return types.Result{}, err
	}

	var src rand.Source
	if in.Seed != nil {
		src = rand.NewSource(*in.Seed)
	} else {
		src = d.newSource()
	}
	rng := rand.New(src) //nolint:gosec // team shuffling is not security sensitive

	// Work on a copy; the caller's slice order is part of the input contract.
	pool := make([]model.Participant, len(in.Participants))
	copy(pool, in.Participants)

	var (
		teams  []*team
		report *types.BalanceReport
	)
	switch strategy {
	case model.StrategyRandom:
		teams = dealRandom(rng, pool, in.NumberOfTeams)
	case model.StrategySkillBalanced:
		teams = dealSnake(pool, in.NumberOfTeams)
	case model.StrategyPositionBalanced:
		teams = dealByPosition(rng, pool, in.NumberOfTeams)
	case model.StrategyBalanced:
		teams = dealEvenSplit(rng, pool, in.NumberOfTeams)
		b := balancer{
			teams:             teams,
			maxIterations:     d.maxIterations,
			scoreThreshold:    d.scoreThreshold,
			positionThreshold: d.positionThreshold,
		}
		r := b.run()
		report = &r
	}

	res := buildResult(strategy, teams, in.Participants)
	res.Balancing = report
	return res, nil
}

func (d *Divider) validate(in Input) (model.Strategy, error) {
	ids := make([]string, len(in.Participants))
	for i, p := range in.Participants {
		if !p.Position.Valid() {
			return "", fmt.Errorf("%w: participant %q has an unknown position", ErrValidation, p.ID)
		}
		ids[i] = p.ID
	}
	return ValidateRequest(ids, in.NumberOfTeams, string(in.Strategy))
}

// ValidateRequest checks the parts of a division request that do not need
// resolved participants and returns the effective strategy.
func ValidateRequest(ids []string, numberOfTeams int, strategy string) (model.Strategy, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: participant list must not be empty", ErrValidation)
	}
	if numberOfTeams < MinTeams || numberOfTeams > MaxTeams {
		return "", fmt.Errorf("%w: number of teams must be between %d and %d, got %d",
			ErrValidation, MinTeams, MaxTeams, numberOfTeams)
	}
	st, err := model.ParseStrategy(strategy)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return "", fmt.Errorf("%w: duplicate participant %q", ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return st, nil
}
