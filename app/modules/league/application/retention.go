package leagueservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CleanupOldWeeks deletes every week older than the retention window,
// cascading its competitors and history snapshots. It is a no-op when the
// total number of weeks is within the window.
func (s *LeagueService) CleanupOldWeeks(ctx context.Context) (*CleanupResult, error) {
	result := &CleanupResult{}

	err := s.instrument(ctx, "cleanup_old_weeks", func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			stale, err := s.repo.StaleWeekIDs(ctx, db, s.retentionWeeks)
			if err != nil {
				return fmt.Errorf("failed to find stale weeks: %w", err)
			}
			if len(stale) == 0 {
				return nil
			}

			competitors, err := s.repo.DeleteWeeks(ctx, db, stale)
			if err != nil {
				return fmt.Errorf("failed to delete stale weeks: %w", err)
			}

			result.WeeksDeleted = len(stale)
			result.CompetitorsDeleted = competitors
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Retention cleanup complete",
		"weeks_deleted", result.WeeksDeleted,
		"competitors_deleted", result.CompetitorsDeleted,
	)
	return result, nil
}
