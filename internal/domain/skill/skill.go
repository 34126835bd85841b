// Package skill derives a participant's skill score from member attributes.
package skill

import (
	"math"

	"github.com/okian/clubhouse/internal/domain/model"
)

// Default heuristic weights.
const (
	DefaultBase            = 3.0
	DefaultMembershipBonus = 0.5
	DefaultGoalkeeperBonus = 0.3

	MinSkill = 1.0
	MaxSkill = 5.0
)

// Option applies a configuration option to the HeuristicRater.
type Option func(*HeuristicRater)

// WithBase sets the score every member starts from.
func WithBase(base float64) Option {
	return func(r *HeuristicRater) {
		if base >= MinSkill && base <= MaxSkill {
			r.base = base
		}
	}
}

// WithMembershipBonus sets the amount added for OFFICIAL members and
// subtracted for TRIAL members.
func WithMembershipBonus(bonus float64) Option {
	return func(r *HeuristicRater) {
		if bonus >= 0 {
			r.membershipBonus = bonus
		}
	}
}

// WithGoalkeeperBonus sets the amount added for goalkeepers.
func WithGoalkeeperBonus(bonus float64) Option {
	return func(r *HeuristicRater) {
		if bonus >= 0 {
			r.goalkeeperBonus = bonus
		}
	}
}

// Rater computes a skill score in [MinSkill, MaxSkill] for a member.
type Rater interface {
	Rate(m model.Member) float64
}

// HeuristicRater implements Rater with fixed additive weights.
type HeuristicRater struct {
	base            float64
	membershipBonus float64
	goalkeeperBonus float64
}

// NewHeuristicRater creates a rater with configuration options.
func NewHeuristicRater(opts ...Option) *HeuristicRater {
	r := &HeuristicRater{
		base:            DefaultBase,
		membershipBonus: DefaultMembershipBonus,
		goalkeeperBonus: DefaultGoalkeeperBonus,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rate returns the member's skill, clamped and rounded to one decimal.
func (r *HeuristicRater) Rate(m model.Member) float64 {
	score := r.base
	switch m.MembershipType {
	case model.MembershipOfficial:
		score += r.membershipBonus
	case model.MembershipTrial:
		score -= r.membershipBonus
	}
	if m.Position == model.Goalkeeper {
		score += r.goalkeeperBonus
	}
	score = math.Max(MinSkill, math.Min(MaxSkill, score))
	return math.Round(score*10) / 10
}

// Participant resolves a member into a division participant using r.
func Participant(r Rater, m model.Member) model.Participant {
	return model.Participant{
		ID:       m.ID,
		Name:     m.FullName,
		Skill:    r.Rate(m),
		Position: m.Position,
	}
}
