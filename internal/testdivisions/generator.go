package testdivisions

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/logger"
)

// Constants for roster generation.
const (
	trialShare      = 0.3 // fraction of TRIAL members
	jerseyShare     = 0.7 // fraction of members with a shirt number
	maxJerseyNumber = 99
)

// Position weights for a football-like roster: few keepers, many outfielders.
var positionWeights = [model.PositionCount]int{1, 4, 4, 3}

var firstNames = []string{
	"Ada", "Bruno", "Chiara", "Dario", "Elif", "Femi", "Greta", "Hugo",
	"Ines", "Jonas", "Kofi", "Lena", "Mateo", "Nadia", "Oskar", "Priya",
}

var lastNames = []string{
	"Alves", "Berg", "Costa", "Dube", "Eriksen", "Fofana", "Garcia", "Hansen",
	"Ito", "Jensen", "Kane", "Lopez", "Moreau", "Novak", "Okafor", "Petit",
}

// generateRoster creates n member requests from rng.
func generateRoster(ctx context.Context, rng *rand.Rand, n int, stats *Stats) []MemberRequest {
	logger.Get().Info(ctx, "generating roster", logger.Int("members", n))

	roster := make([]MemberRequest, n)
	for i := range roster {
		roster[i] = generateSingleMember(rng, i)
	}

	stats.MembersGenerated = len(roster)
	return roster
}

// generateSingleMember creates one member with a weighted random position.
func generateSingleMember(rng *rand.Rand, index int) MemberRequest {
	m := MemberRequest{
		FullName:       firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))] + " " + strconv.Itoa(index+1),
		Position:       pickPosition(rng).String(),
		MembershipType: string(model.MembershipOfficial),
	}
	if rng.Float64() < trialShare {
		m.MembershipType = string(model.MembershipTrial)
	}
	if rng.Float64() < jerseyShare {
		n := 1 + rng.Intn(maxJerseyNumber)
		m.JerseyNumber = &n
	}
	return m
}

func pickPosition(rng *rand.Rand) model.Position {
	total := 0
	for _, w := range positionWeights {
		total += w
	}
	r := rng.Intn(total)
	for i, w := range positionWeights {
		if r < w {
			return model.Position(i)
		}
		r -= w
	}
	return model.Forward
}

// buildCases lists every strategy against every team count in [minTeams, maxTeams].
func buildCases(minTeams, maxTeams int) []Case {
	cases := make([]Case, 0, len(model.Strategies)*(maxTeams-minTeams+1))
	for _, st := range model.Strategies {
		for n := minTeams; n <= maxTeams; n++ {
			cases = append(cases, Case{Strategy: st, Teams: n})
		}
	}
	return cases
}
