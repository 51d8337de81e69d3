package leagueservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
)

// Service is the season lifecycle contract the scheduler and operator
// surfaces drive.
type Service interface {
	// StartSeason creates and populates the week for startDate.
	StartSeason(ctx context.Context, startDate time.Time) (*StartSeasonResult, error)
	// CurrentWeek returns the most recently started week.
	CurrentWeek(ctx context.Context) (*leaguedb.Week, error)
	// PopulateCurrentWeek tops up under-filled pods with bots.
	PopulateCurrentWeek(ctx context.Context) (*PopulationSummary, error)
	// SimulateBotActivity applies one day of synthetic point gains.
	SimulateBotActivity(ctx context.Context) (*SimulationSummary, error)
	// RefreshCurrentWeekRanking syncs totals and recomputes positions.
	RefreshCurrentWeekRanking(ctx context.Context) (*RankingSummary, error)
	// SyncAndRank is the composable form of the ranking pass.
	SyncAndRank(ctx context.Context, db bun.IDB, weekID int64) (RankingSummary, error)
	// ProcessCurrentWeek finalizes the most recent week.
	ProcessCurrentWeek(ctx context.Context) (*ProcessWeekResult, error)
	// ProcessWeekEnd finalizes one week idempotently.
	ProcessWeekEnd(ctx context.Context, weekID int64) (*ProcessWeekResult, error)
	// CleanupOldWeeks prunes weeks beyond the retention window.
	CleanupOldWeeks(ctx context.Context) (*CleanupResult, error)
}

var _ Service = (*LeagueService)(nil)
