package leaguedomain

// League represents one of the fixed ordered competitive levels.
// Leagues are static reference data and are never created at runtime.
type League int

const (
	LeagueBronze   League = 1
	LeagueSilver   League = 2
	LeagueGold     League = 3
	LeaguePlatinum League = 4
	LeagueDiamond  League = 5

	MinLeague = LeagueBronze
	MaxLeague = LeagueDiamond

	// PodCapacity is the fixed number of slots in a pod.
	PodCapacity = 10
)

var leagueNames = map[League]string{
	LeagueBronze:   "Bronze",
	LeagueSilver:   "Silver",
	LeagueGold:     "Gold",
	LeaguePlatinum: "Platinum",
	LeagueDiamond:  "Diamond",
}

// String returns the display name of the league.
func (l League) String() string {
	if name, ok := leagueNames[l]; ok {
		return name
	}
	return "Unknown"
}

// IsValid reports whether l is within the fixed league range.
func (l League) IsValid() bool {
	return l >= MinLeague && l <= MaxLeague
}

// Promoted returns the league one level up, capped at MaxLeague.
func (l League) Promoted() League {
	if l >= MaxLeague {
		return MaxLeague
	}
	return l + 1
}

// Relegated returns the league one level down, floored at MinLeague.
func (l League) Relegated() League {
	if l <= MinLeague {
		return MinLeague
	}
	return l - 1
}

// Outcome is the result of week-end processing for one competitor.
type Outcome string

const (
	OutcomePromoted  Outcome = "promoted"
	OutcomeRelegated Outcome = "relegated"
	OutcomeStayed    Outcome = "stayed"
)
