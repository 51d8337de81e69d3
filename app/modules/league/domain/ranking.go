package leaguedomain

import (
	"cmp"
	"slices"
)

// RankedCompetitor is the minimal view the ranking order needs.
type RankedCompetitor struct {
	ID     int64
	Points int
}

// RankPod returns the competitors of one pod in final rank order: points
// descending, ties broken by competitor id ascending. The secondary key is
// arbitrary but guarantees a strict total order, so positions are always
// unique even under exact point ties.
func RankPod(competitors []RankedCompetitor) []RankedCompetitor {
	ranked := slices.Clone(competitors)
	slices.SortFunc(ranked, func(a, b RankedCompetitor) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return ranked
}
