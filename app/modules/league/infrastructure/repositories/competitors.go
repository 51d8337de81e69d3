package leaguedb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
)

// PodKey identifies one pod within a week.
type PodKey struct {
	League leaguedomain.League `bun:"league"`
	Pod    int                 `bun:"pod_number"`
}

// InsertCompetitors inserts all rows as one batch.
func (r *Impl) InsertCompetitors(ctx context.Context, db bun.IDB, competitors []*Competitor) error {
	if len(competitors) == 0 {
		return nil
	}
	if db == nil {
		db = r.DB
	}
	if _, err := db.NewInsert().Model(&competitors).Exec(ctx); err != nil {
		return fmt.Errorf("leaguedb.InsertCompetitors: %w", err)
	}
	return nil
}

// ListCompetitorsByWeek returns every competitor of a week, ordered by pod.
func (r *Impl) ListCompetitorsByWeek(ctx context.Context, db bun.IDB, weekID int64) ([]Competitor, error) {
	if db == nil {
		db = r.DB
	}
	var competitors []Competitor
	err := db.NewSelect().
		Model(&competitors).
		Where("week_id = ?", weekID).
		Order("league", "pod_number", "id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.ListCompetitorsByWeek: %w", err)
	}
	return competitors, nil
}

// ListPods returns the distinct (league, pod) pairs that exist for a week.
func (r *Impl) ListPods(ctx context.Context, db bun.IDB, weekID int64) ([]PodKey, error) {
	if db == nil {
		db = r.DB
	}
	var pods []PodKey
	err := db.NewSelect().
		Model((*Competitor)(nil)).
		ColumnExpr("DISTINCT league, pod_number").
		Where("week_id = ?", weekID).
		OrderExpr("league, pod_number").
		Scan(ctx, &pods)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.ListPods: %w", err)
	}
	return pods, nil
}

// GetPodForUpdate loads one pod's competitor set under row locks, so
// concurrent fills of the same pod serialize.
func (r *Impl) GetPodForUpdate(ctx context.Context, db bun.IDB, weekID int64, league leaguedomain.League, pod int) ([]Competitor, error) {
	if db == nil {
		db = r.DB
	}
	var competitors []Competitor
	err := db.NewSelect().
		Model(&competitors).
		Where("week_id = ? AND league = ? AND pod_number = ?", weekID, league, pod).
		Order("id").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.GetPodForUpdate: %w", err)
	}
	return competitors, nil
}

// ListBotsByWeek returns the synthetic competitors of a week.
func (r *Impl) ListBotsByWeek(ctx context.Context, db bun.IDB, weekID int64) ([]Competitor, error) {
	if db == nil {
		db = r.DB
	}
	var bots []Competitor
	err := db.NewSelect().
		Model(&bots).
		Where("week_id = ? AND is_real = FALSE", weekID).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.ListBotsByWeek: %w", err)
	}
	return bots, nil
}

// SetCompetitorPoints overwrites a competitor's point total with the
// authoritative value.
func (r *Impl) SetCompetitorPoints(ctx context.Context, db bun.IDB, competitorID int64, points int) error {
	if db == nil {
		db = r.DB
	}
	_, err := db.NewUpdate().
		Model((*Competitor)(nil)).
		Set("points = ?", points).
		Where("id = ?", competitorID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.SetCompetitorPoints: %w", err)
	}
	return nil
}

// AddCompetitorPoints adds a delta to a competitor's running total.
func (r *Impl) AddCompetitorPoints(ctx context.Context, db bun.IDB, competitorID int64, delta int) error {
	if db == nil {
		db = r.DB
	}
	_, err := db.NewUpdate().
		Model((*Competitor)(nil)).
		Set("points = points + ?", delta).
		Where("id = ?", competitorID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.AddCompetitorPoints: %w", err)
	}
	return nil
}

// SetCompetitorPosition assigns a competitor's rank position within its pod.
func (r *Impl) SetCompetitorPosition(ctx context.Context, db bun.IDB, competitorID int64, position int) error {
	if db == nil {
		db = r.DB
	}
	_, err := db.NewUpdate().
		Model((*Competitor)(nil)).
		Set("position = ?", position).
		Where("id = ?", competitorID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.SetCompetitorPosition: %w", err)
	}
	return nil
}
