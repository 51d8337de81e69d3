package schedulerservice

import (
	"context"
	"errors"
)

// ErrNothingToDo marks a run where the job's precondition did not hold
// (no current week, season already started, outside the boundary window).
// It is recorded as skipped, not failed.
var ErrNothingToDo = errors.New("nothing to do")

// Operation is one schedulable unit of work.
type Operation func(ctx context.Context) error

// Stable job identifiers for the execution ledger.
const (
	JobBotActivity  = "league-bot-activity"
	JobRankRefresh  = "league-rank-refresh"
	JobWeekBoundary = "league-week-boundary"
	JobRetention    = "league-retention-cleanup"
)

// Operations maps the operation names the job list may reference to the
// scheduler's bound implementations.
func (s *Scheduler) Operations() map[string]Operation {
	return map[string]Operation{
		"simulate_bot_activity": s.simulateBotActivity,
		"refresh_ranking":       s.refreshRanking,
		"week_boundary_check":   s.weekBoundaryCheck,
		"cleanup_old_weeks":     s.cleanupOldWeeks,
	}
}
