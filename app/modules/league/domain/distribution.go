package leaguedomain

import (
	"slices"
)

// PriorStanding is a participant's most recent processed-week snapshot.
type PriorStanding struct {
	League  League
	Points  int
	Outcome Outcome
}

// Entrant is an active participant eligible for the new week.
type Entrant struct {
	UserID string
	Name   string
	// Prior is nil for participants with no transition history.
	Prior *PriorStanding
}

// Placement is one planned competitor slot in the new week.
type Placement struct {
	UserID   string
	Name     string
	League   League
	Pod      int
	Position int
}

// TargetLeague computes where an entrant starts the new week.
//
// Rules:
//   - No prior history: the base (lowest) league.
//   - Prior outcome promoted: one level up, capped at the top.
//   - Prior outcome relegated: one level down, floored at the bottom.
//   - Otherwise: unchanged.
func TargetLeague(prior *PriorStanding) League {
	if prior == nil {
		return MinLeague
	}
	switch prior.Outcome {
	case OutcomePromoted:
		return prior.League.Promoted()
	case OutcomeRelegated:
		return prior.League.Relegated()
	default:
		return prior.League
	}
}

// PlanDistribution assigns every entrant a league, a pod number, and a
// position within that pod.
//
// Within each league, entrants are ordered by prior-week points descending
// (stable order for ties) and partitioned into consecutive pods of
// PodCapacity. The final partial pod is not rebalanced.
func PlanDistribution(entrants []Entrant) []Placement {
	byLeague := make(map[League][]Entrant)
	for _, e := range entrants {
		target := TargetLeague(e.Prior)
		byLeague[target] = append(byLeague[target], e)
	}

	placements := make([]Placement, 0, len(entrants))
	for league := MinLeague; league <= MaxLeague; league++ {
		group := byLeague[league]
		if len(group) == 0 {
			continue
		}

		slices.SortStableFunc(group, func(a, b Entrant) int {
			return priorPoints(b) - priorPoints(a)
		})

		for i, e := range group {
			placements = append(placements, Placement{
				UserID:   e.UserID,
				Name:     e.Name,
				League:   league,
				Pod:      i/PodCapacity + 1,
				Position: i%PodCapacity + 1,
			})
		}
	}

	return placements
}

func priorPoints(e Entrant) int {
	if e.Prior == nil {
		return 0
	}
	return e.Prior.Points
}
