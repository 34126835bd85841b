package division

import (
	"math/rand"
	"sort"

	"github.com/okian/clubhouse/internal/domain/model"
)

func shuffle(rng *rand.Rand, ps []model.Participant) {
	rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
}

// dealRandom shuffles the pool and deals it round-robin.
func dealRandom(rng *rand.Rand, pool []model.Participant, n int) []*team {
	shuffle(rng, pool)
	teams := newTeams(n)
	for i, p := range pool {
		teams[i%n].add(p)
	}
	return teams
}

// dealSnake sorts by skill descending and deals in boustrophedon order:
// 0,1,..,n-1,n-1,..,1,0,0,1,.. Equal skills keep their input order.
func dealSnake(pool []model.Participant, n int) []*team {
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Skill > pool[j].Skill })
	teams := newTeams(n)
	for i, p := range pool {
		teams[snakeIndex(i, n)].add(p)
	}
	return teams
}

// snakeIndex returns the team receiving the i-th pick of a snake draft.
func snakeIndex(i, n int) int {
	round, offset := i/n, i%n
	if round%2 == 1 {
		return n - 1 - offset
	}
	return offset
}

// dealByPosition buckets the pool by position, shuffles each bucket and deals
// every bucket round-robin from team 0.
func dealByPosition(rng *rand.Rand, pool []model.Participant, n int) []*team {
	var buckets [model.PositionCount][]model.Participant
	for _, p := range pool {
		buckets[p.Position] = append(buckets[p.Position], p)
	}
	teams := newTeams(n)
	for _, bucket := range buckets {
		shuffle(rng, bucket)
		for i, p := range bucket {
			teams[i%n].add(p)
		}
	}
	return teams
}

// dealEvenSplit shuffles the pool and cuts it into contiguous chunks of
// floor(total/n), the first total%n teams taking one extra.
func dealEvenSplit(rng *rand.Rand, pool []model.Participant, n int) []*team {
	shuffle(rng, pool)
	teams := newTeams(n)
	base, extra := len(pool)/n, len(pool)%n
	next := 0
	for t := range teams {
		size := base
		if t < extra {
			size++
		}
		for _, p := range pool[next : next+size] {
			teams[t].add(p)
		}
		next += size
	}
	return teams
}
