package division

import (
	"math"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

// balancer refines an even split with like-for-like swaps so team sizes never
// change. Score swaps pick the best candidate; position swaps take the first
// one that keeps the score guard.
type balancer struct {
	teams             []*team
	maxIterations     int
	scoreThreshold    float64
	positionThreshold int
}

func (b *balancer) run() types.BalanceReport {
	var report types.BalanceReport
	for report.Iterations < b.maxIterations {
		report.Iterations++

		if b.scoreGap() > b.scoreThreshold {
			if !b.swapForScore() {
				report.Converged = true
				return report
			}
			report.ScoreSwaps++
			continue
		}

		if !b.swapForPosition() {
			report.Converged = true
			return report
		}
		report.PositionSwaps++
	}
	return report
}

func (b *balancer) scoreGap() float64 {
	hi, lo := b.scoreExtremes()
	return b.teams[hi].totalScore - b.teams[lo].totalScore
}

// scoreExtremes returns the first team with the highest and the first team
// with the lowest total score.
func (b *balancer) scoreExtremes() (hi, lo int) {
	for i, t := range b.teams {
		if t.totalScore > b.teams[hi].totalScore {
			hi = i
		}
		if t.totalScore < b.teams[lo].totalScore {
			lo = i
		}
	}
	return hi, lo
}

// positionExtremes is scoreExtremes for the count of one position.
func (b *balancer) positionExtremes(pos model.Position) (hi, lo int) {
	for i, t := range b.teams {
		if t.positionCounts[pos] > b.teams[hi].positionCounts[pos] {
			hi = i
		}
		if t.positionCounts[pos] < b.teams[lo].positionCounts[pos] {
			lo = i
		}
	}
	return hi, lo
}

// gapAfterSwap is the score gap between a and c once p leaves a for c and q
// leaves c for a.
func gapAfterSwap(a, c *team, p, q model.Participant) float64 {
	delta := p.Skill - q.Skill
	return math.Abs((a.totalScore - delta) - (c.totalScore + delta))
}

// swapForScore exchanges a same-position pair between the strongest and the
// weakest team, choosing the pair with the smallest resulting gap that is both
// below the current gap and within the threshold.
func (b *balancer) swapForScore() bool {
	hi, lo := b.scoreExtremes()
	strong, weak := b.teams[hi], b.teams[lo]

	bestGap := strong.totalScore - weak.totalScore
	bestI, bestJ := -1, -1
	for i, p := range strong.members {
		for j, q := range weak.members {
			if p.Position != q.Position {
				continue
			}
			gap := gapAfterSwap(strong, weak, p, q)
			if gap < bestGap && gap <= b.scoreThreshold {
				bestGap, bestI, bestJ = gap, i, j
			}
		}
	}
	if bestI < 0 {
		return false
	}
	swapMembers(strong, bestI, weak, bestJ)
	return true
}

// swapForPosition walks the positions in canonical order and, for the first
// one whose count spread exceeds the threshold, moves a holder from the
// richest team to the poorest in exchange for a non-holder.
func (b *balancer) swapForPosition() bool {
	for _, pos := range model.Positions {
		hi, lo := b.positionExtremes(pos)
		rich, poor := b.teams[hi], b.teams[lo]
		if rich.positionCounts[pos]-poor.positionCounts[pos] <= b.positionThreshold {
			continue
		}
		for i, p := range rich.members {
			if p.Position != pos {
				continue
			}
			for j, q := range poor.members {
				if q.Position == pos {
					continue
				}
				if gapAfterSwap(rich, poor, p, q) <= b.scoreThreshold {
					swapMembers(rich, i, poor, j)
					return true
				}
			}
		}
	}
	return false
}
