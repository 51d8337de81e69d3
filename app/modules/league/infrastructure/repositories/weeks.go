package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl is the bun-backed league repository.
type Impl struct {
	DB *bun.DB
}

// CreateWeek inserts a new week row and fills in its generated id.
func (r *Impl) CreateWeek(ctx context.Context, db bun.IDB, week *Week) error {
	if db == nil {
		db = r.DB
	}
	if _, err := db.NewInsert().Model(week).Exec(ctx); err != nil {
		return fmt.Errorf("leaguedb.CreateWeek: %w", err)
	}
	return nil
}

// GetWeekByStartDateForUpdate loads the week for a start date under a row
// lock, so two concurrent season starts for the same date serialize.
// Returns ErrNotFound when no week exists for the date.
func (r *Impl) GetWeekByStartDateForUpdate(ctx context.Context, db bun.IDB, startDate time.Time) (*Week, error) {
	if db == nil {
		db = r.DB
	}
	week := &Week{}
	err := db.NewSelect().
		Model(week).
		Where("start_date = ?", startDate).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaguedb.GetWeekByStartDateForUpdate: %w", err)
	}
	return week, nil
}

// GetWeekForUpdate loads a week by id under a row lock. Week-end processing
// locks the processed flag this way before deciding anything.
func (r *Impl) GetWeekForUpdate(ctx context.Context, db bun.IDB, weekID int64) (*Week, error) {
	if db == nil {
		db = r.DB
	}
	week := &Week{}
	err := db.NewSelect().
		Model(week).
		Where("w.id = ?", weekID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaguedb.GetWeekForUpdate: %w", err)
	}
	return week, nil
}

// CurrentWeek returns the most recently started week, or ErrNotFound when no
// week has ever been started.
func (r *Impl) CurrentWeek(ctx context.Context, db bun.IDB) (*Week, error) {
	if db == nil {
		db = r.DB
	}
	week := &Week{}
	err := db.NewSelect().
		Model(week).
		Order("start_date DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaguedb.CurrentWeek: %w", err)
	}
	return week, nil
}

// MarkWeekProcessed flips the processed flag. The flag is monotonic, so the
// update only matches an unprocessed row; ErrNoRowsAffected signals the week
// was already processed or missing.
func (r *Impl) MarkWeekProcessed(ctx context.Context, db bun.IDB, weekID int64) error {
	if db == nil {
		db = r.DB
	}
	result, err := db.NewUpdate().
		Model((*Week)(nil)).
		Set("processed = TRUE").
		Where("id = ? AND processed = FALSE", weekID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.MarkWeekProcessed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("leaguedb.MarkWeekProcessed: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
