package userdb

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
)

// Impl is the bun-backed user repository.
type Impl struct {
	DB *bun.DB
}

// ListActiveSince returns users whose last activity is at or after the
// cutoff, ordered by id for stable batches.
func (r *Impl) ListActiveSince(ctx context.Context, db bun.IDB, cutoff time.Time) ([]User, error) {
	if db == nil {
		db = r.DB
	}
	var users []User
	err := db.NewSelect().
		Model(&users).
		Where("last_active_at >= ?", cutoff).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("userdb.ListActiveSince: %w", err)
	}
	return users, nil
}

// GetPointTotals returns the authoritative point total per user id.
func (r *Impl) GetPointTotals(ctx context.Context, db bun.IDB, userIDs []string) (map[string]int, error) {
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}
	if db == nil {
		db = r.DB
	}
	var users []User
	err := db.NewSelect().
		Model(&users).
		Column("id", "points").
		Where("id IN (?)", bun.In(userIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("userdb.GetPointTotals: %w", err)
	}

	totals := make(map[string]int, len(users))
	for _, u := range users {
		totals[u.ID] = u.Points
	}
	return totals, nil
}

// SetLeague updates a user's current league placement.
func (r *Impl) SetLeague(ctx context.Context, db bun.IDB, userID string, league leaguedomain.League) error {
	if db == nil {
		db = r.DB
	}
	result, err := db.NewUpdate().
		Model((*User)(nil)).
		Set("league = ?", league).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.SetLeague: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("userdb.SetLeague: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
