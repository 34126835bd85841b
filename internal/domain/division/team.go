package division

import "github.com/okian/clubhouse/internal/domain/model"

// team is the working structure during a division. totalScore and
// positionCounts always equal the aggregate of members; add and swap keep
// them in step.
type team struct {
	members        []model.Participant
	totalScore     float64
	positionCounts [model.PositionCount]int
}

func newTeams(n int) []*team {
	teams := make([]*team, n)
	for i := range teams {
		teams[i] = &team{}
	}
	return teams
}

func (t *team) add(p model.Participant) {
	t.members = append(t.members, p)
	t.totalScore += p.Skill
	t.positionCounts[p.Position]++
}

// swapMembers exchanges a.members[i] with b.members[j]. Team sizes never change.
func swapMembers(a *team, i int, b *team, j int) {
	p, q := a.members[i], b.members[j]
	a.members[i], b.members[j] = q, p

	delta := p.Skill - q.Skill
	a.totalScore -= delta
	b.totalScore += delta

	a.positionCounts[p.Position]--
	a.positionCounts[q.Position]++
	b.positionCounts[q.Position]--
	b.positionCounts[p.Position]++
}
