package leagueservice

import (
	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
)

// DistributionSummary reports what the distribution step placed.
type DistributionSummary struct {
	Participants int
	PodsByLeague map[leaguedomain.League]int
}

// PopulationSummary reports the synthetic fill.
type PopulationSummary struct {
	PodsFilled int
	BotsAdded  int
}

// StartSeasonResult is the outcome of starting a new week.
type StartSeasonResult struct {
	WeekID       int64
	Distribution DistributionSummary
	Population   PopulationSummary
}

// SimulationSummary reports one bot activity tick.
type SimulationSummary struct {
	Bots    int
	Active  int
	Skipped int
}

// RankingSummary reports a sync-and-rank pass.
type RankingSummary struct {
	RealSynced int
	Pods       int
}

// ProcessWeekResult is the outcome of week-end processing. A second call for
// the same week returns AlreadyProcessed=true with zero counts.
type ProcessWeekResult struct {
	WeekID           int64
	AlreadyProcessed bool
	Promoted         int
	Relegated        int
	Stayed           int
	BotsPromoted     int
	BotsRelegated    int
	TotalProcessed   int
}

// CleanupResult reports retention cleanup.
type CleanupResult struct {
	WeeksDeleted       int
	CompetitorsDeleted int
}
