package leaguedb

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
)

// Repository defines the contract for league persistence.
// Every method accepts an optional bun.IDB so callers can compose operations
// into a surrounding transaction; a nil db falls back to the repository's
// own connection.
//
// Error semantics:
//   - ErrNotFound: record does not exist
//   - ErrNoRowsAffected: UPDATE/DELETE matched no rows
//   - Other errors: infrastructure failures (DB connection, query errors)
type Repository interface {
	// CreateWeek inserts a new week row and fills in its generated id.
	CreateWeek(ctx context.Context, db bun.IDB, week *Week) error

	// GetWeekByStartDateForUpdate loads the week for a start date under a row lock.
	GetWeekByStartDateForUpdate(ctx context.Context, db bun.IDB, startDate time.Time) (*Week, error)

	// GetWeekForUpdate loads a week by id under a row lock.
	GetWeekForUpdate(ctx context.Context, db bun.IDB, weekID int64) (*Week, error)

	// CurrentWeek returns the most recently started week.
	CurrentWeek(ctx context.Context, db bun.IDB) (*Week, error)

	// MarkWeekProcessed flips the monotonic processed flag.
	MarkWeekProcessed(ctx context.Context, db bun.IDB, weekID int64) error

	// InsertCompetitors inserts all rows as one batch.
	InsertCompetitors(ctx context.Context, db bun.IDB, competitors []*Competitor) error

	// ListCompetitorsByWeek returns every competitor of a week.
	ListCompetitorsByWeek(ctx context.Context, db bun.IDB, weekID int64) ([]Competitor, error)

	// ListPods returns the distinct (league, pod) pairs of a week.
	ListPods(ctx context.Context, db bun.IDB, weekID int64) ([]PodKey, error)

	// GetPodForUpdate loads one pod's competitor set under row locks.
	GetPodForUpdate(ctx context.Context, db bun.IDB, weekID int64, league leaguedomain.League, pod int) ([]Competitor, error)

	// ListBotsByWeek returns the synthetic competitors of a week.
	ListBotsByWeek(ctx context.Context, db bun.IDB, weekID int64) ([]Competitor, error)

	// SetCompetitorPoints overwrites a competitor's point total.
	SetCompetitorPoints(ctx context.Context, db bun.IDB, competitorID int64, points int) error

	// AddCompetitorPoints adds a delta to a competitor's running total.
	AddCompetitorPoints(ctx context.Context, db bun.IDB, competitorID int64, delta int) error

	// SetCompetitorPosition assigns a rank position within a pod.
	SetCompetitorPosition(ctx context.Context, db bun.IDB, competitorID int64, position int) error

	// InsertTransitionHistory writes immutable week-end snapshots as one batch.
	InsertTransitionHistory(ctx context.Context, db bun.IDB, entries []*TransitionHistory) error

	// LatestStandings returns each user's most recent history entry.
	LatestStandings(ctx context.Context, db bun.IDB) (map[string]PriorStanding, error)

	// CountHistoryByWeek returns how many history snapshots exist for a week.
	CountHistoryByWeek(ctx context.Context, db bun.IDB, weekID int64) (int, error)

	// StaleWeekIDs returns ids of weeks older than the keep most recent ones.
	StaleWeekIDs(ctx context.Context, db bun.IDB, keep int) ([]int64, error)

	// DeleteWeeks removes weeks with their competitors and history.
	DeleteWeeks(ctx context.Context, db bun.IDB, weekIDs []int64) (int, error)
}

var _ Repository = (*Impl)(nil)
