package leaguedb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// StaleWeekIDs returns the ids of every week older than the keep most
// recently started ones.
func (r *Impl) StaleWeekIDs(ctx context.Context, db bun.IDB, keep int) ([]int64, error) {
	if db == nil {
		db = r.DB
	}
	var ids []int64
	err := db.NewSelect().
		Model((*Week)(nil)).
		Column("id").
		Order("start_date DESC").
		Offset(keep).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.StaleWeekIDs: %w", err)
	}
	return ids, nil
}

// DeleteWeeks removes the given weeks together with their competitors and
// history snapshots. It returns the number of competitors removed.
func (r *Impl) DeleteWeeks(ctx context.Context, db bun.IDB, weekIDs []int64) (int, error) {
	if len(weekIDs) == 0 {
		return 0, nil
	}
	if db == nil {
		db = r.DB
	}

	competitorsRes, err := db.NewDelete().
		Model((*Competitor)(nil)).
		Where("week_id IN (?)", bun.In(weekIDs)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("leaguedb.DeleteWeeks: competitors: %w", err)
	}
	competitorsDeleted, err := competitorsRes.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("leaguedb.DeleteWeeks: rows affected: %w", err)
	}

	if _, err := db.NewDelete().
		Model((*TransitionHistory)(nil)).
		Where("week_id IN (?)", bun.In(weekIDs)).
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("leaguedb.DeleteWeeks: history: %w", err)
	}

	if _, err := db.NewDelete().
		Model((*Week)(nil)).
		Where("id IN (?)", bun.In(weekIDs)).
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("leaguedb.DeleteWeeks: weeks: %w", err)
	}

	return int(competitorsDeleted), nil
}
