package testdivisions

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

const scoreTolerance = 1e-6

// verifyDivision checks a division result against the request that produced
// it and returns every problem found.
func verifyDivision(c Case, ids []string, res *types.Result) []string {
	if res == nil {
		return []string{"empty result"}
	}

	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if res.Strategy != c.Strategy {
		report("strategy %s, want %s", res.Strategy, c.Strategy)
	}
	if len(res.Teams) != c.Teams {
		report("%d teams, want %d", len(res.Teams), c.Teams)
	}
	if res.Summary.TotalParticipants != len(ids) {
		report("summary counts %d participants, want %d", res.Summary.TotalParticipants, len(ids))
	}
	if (res.Balancing != nil) != (c.Strategy == model.StrategyBalanced) {
		report("balancing report present=%t for %s", res.Balancing != nil, c.Strategy)
	}

	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}
	seen := make(map[string]int, len(ids))

	for i, t := range res.Teams {
		if want := "Team " + strconv.Itoa(i+1); t.Name != want {
			report("team %d named %q, want %q", i, t.Name, want)
		}
		sum := 0.0
		for _, p := range t.Participants {
			seen[p.ID]++
			if !requested[p.ID] {
				report("%s holds unrequested participant %s", t.Name, p.ID)
			}
			sum += p.Skill
		}
		if math.Abs(sum-t.TotalScore) > scoreTolerance {
			report("%s totalScore %.3f, members sum to %.3f", t.Name, t.TotalScore, sum)
		}
		if len(t.PositionStats) != model.PositionCount {
			report("%s has %d position stats, want %d", t.Name, len(t.PositionStats), model.PositionCount)
		}
	}
	for _, id := range ids {
		if n := seen[id]; n != 1 {
			report("participant %s assigned %d times", id, n)
		}
	}

	if c.Strategy == model.StrategyPositionBalanced {
		for _, pos := range model.Positions {
			if lo, hi := positionSpread(res.Teams, pos); hi-lo > 1 {
				report("%s counts range %d..%d across teams", pos, lo, hi)
			}
		}
	} else if lo, hi := sizeSpread(res.Teams); hi-lo > 1 {
		report("team sizes range %d..%d", lo, hi)
	}

	return problems
}

func sizeSpread(teams []types.Team) (lo, hi int) {
	if len(teams) == 0 {
		return 0, 0
	}
	lo, hi = len(teams[0].Participants), len(teams[0].Participants)
	for _, t := range teams[1:] {
		lo = min(lo, len(t.Participants))
		hi = max(hi, len(t.Participants))
	}
	return lo, hi
}

func positionSpread(teams []types.Team, pos model.Position) (lo, hi int) {
	counts := make([]int, len(teams))
	for i, t := range teams {
		for _, p := range t.Participants {
			if p.Position == pos {
				counts[i]++
			}
		}
	}
	if len(counts) == 0 {
		return 0, 0
	}
	lo, hi = counts[0], counts[0]
	for _, n := range counts[1:] {
		lo = min(lo, n)
		hi = max(hi, n)
	}
	return lo, hi
}

// scoreSpread returns the gap between the strongest and weakest team.
func scoreSpread(teams []types.Team) float64 {
	if len(teams) == 0 {
		return 0
	}
	lo, hi := teams[0].TotalScore, teams[0].TotalScore
	for _, t := range teams[1:] {
		lo = math.Min(lo, t.TotalScore)
		hi = math.Max(hi, t.TotalScore)
	}
	return hi - lo
}

// verifyResults logs every outcome and fails if any case did not pass.
func verifyResults(ctx context.Context, config *Config, outcomes []Outcome) error {
	log.Println("🔍 Verifying divisions...")

	failed := 0
	for _, o := range outcomes {
		switch {
		case o.Strategy == "":
			continue
		case o.Err != "":
			failed++
			log.Printf("❌ %s/%d teams: %s", o.Strategy, o.Teams, o.Err)
		case len(o.Problems) > 0:
			failed++
			log.Printf("❌ %s/%d teams:", o.Strategy, o.Teams)
			for _, p := range o.Problems {
				log.Printf("   - %s", p)
			}
		default:
			if config.Verbose {
				log.Printf("✅ %s/%d teams: spread %.1f", o.Strategy, o.Teams, scoreSpread(o.Result.Teams))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d divisions failed verification", failed, len(outcomes))
	}

	log.Println("✅ Division verification completed")
	return nil
}
