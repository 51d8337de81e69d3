package leaguedb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// InsertTransitionHistory writes the immutable week-end snapshots as one
// batch.
func (r *Impl) InsertTransitionHistory(ctx context.Context, db bun.IDB, entries []*TransitionHistory) error {
	if len(entries) == 0 {
		return nil
	}
	if db == nil {
		db = r.DB
	}
	if _, err := db.NewInsert().Model(&entries).Exec(ctx); err != nil {
		return fmt.Errorf("leaguedb.InsertTransitionHistory: %w", err)
	}
	return nil
}

// LatestStandings returns each user's most recent transition history entry,
// ordered by the week's start date. Users with no history are absent from
// the map.
func (r *Impl) LatestStandings(ctx context.Context, db bun.IDB) (map[string]PriorStanding, error) {
	if db == nil {
		db = r.DB
	}
	var rows []PriorStanding
	err := db.NewSelect().
		TableExpr("league_transition_history AS th").
		ColumnExpr("DISTINCT ON (th.user_id) th.user_id").
		ColumnExpr("th.league, th.points, th.outcome").
		ColumnExpr("w.start_date AS week_date").
		Join("JOIN league_weeks AS w ON w.id = th.week_id").
		OrderExpr("th.user_id, w.start_date DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.LatestStandings: %w", err)
	}

	standings := make(map[string]PriorStanding, len(rows))
	for _, row := range rows {
		standings[row.UserID] = row
	}
	return standings, nil
}

// CountHistoryByWeek returns how many history snapshots exist for a week.
func (r *Impl) CountHistoryByWeek(ctx context.Context, db bun.IDB, weekID int64) (int, error) {
	if db == nil {
		db = r.DB
	}
	count, err := db.NewSelect().
		Model((*TransitionHistory)(nil)).
		Where("week_id = ?", weekID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("leaguedb.CountHistoryByWeek: %w", err)
	}
	return count, nil
}
