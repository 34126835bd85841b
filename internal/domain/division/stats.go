package division

import (
	"strconv"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

func buildResult(strategy model.Strategy, teams []*team, pool []model.Participant) types.Result {
	out := types.Result{
		Strategy: strategy,
		Teams:    make([]types.Team, len(teams)),
		Summary:  summarize(pool),
	}
	for i, t := range teams {
		members := make([]model.Participant, len(t.members))
		copy(members, t.members)
		total := 0.0
		for _, p := range members {
			total += p.Skill
		}
		out.Teams[i] = types.Team{
			Name:          "Team " + strconv.Itoa(i+1),
			Participants:  members,
			TotalScore:    total,
			PositionStats: PositionStats(members),
		}
	}
	return out
}

// PositionStats returns count and skill total for all four positions, in
// canonical order, zero-filled.
func PositionStats(ps []model.Participant) []types.PositionStat {
	stats := make([]types.PositionStat, model.PositionCount)
	for i, pos := range model.Positions {
		stats[i].Position = pos
	}
	for _, p := range ps {
		stats[p.Position].Count++
		stats[p.Position].TotalScore += p.Skill
	}
	return stats
}

func summarize(pool []model.Participant) types.Summary {
	s := types.Summary{
		TotalParticipants:    len(pool),
		PositionDistribution: make(map[model.Position]int, model.PositionCount),
	}
	for _, pos := range model.Positions {
		s.PositionDistribution[pos] = 0
	}
	total := 0.0
	for _, p := range pool {
		total += p.Skill
		s.PositionDistribution[p.Position]++
	}
	if len(pool) > 0 {
		s.AverageSkill = total / float64(len(pool))
	}
	return s
}
