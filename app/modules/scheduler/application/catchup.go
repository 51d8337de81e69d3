package schedulerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/time/rate"

	schedulerdb "github.com/streakline/league-engine/app/modules/scheduler/infrastructure/repositories"
	"github.com/streakline/league-engine/app/shared/clock"
)

// CatchupReport summarizes one startup recovery pass.
type CatchupReport struct {
	Checked   int
	Overdue   int
	Succeeded int
	Skipped   int
	Failed    int
}

// CatchupCoordinator runs missed jobs at process startup. A job is overdue
// when it has no ledger record at all, or when the time since its last
// execution exceeds its class threshold. Overdue jobs run sequentially in
// priority order, paced by a rate limiter so recovery after long downtime
// does not stampede the database.
type CatchupCoordinator struct {
	jobs    []JobSpec
	ops     map[string]Operation
	ledger  schedulerdb.Repository
	clock   clock.Clock
	logger  *slog.Logger
	limiter *rate.Limiter
}

// NewCatchupCoordinator creates a coordinator for the given job specs. The
// specs must already be validated and every spec's operation must be present
// in ops. delay is the minimum spacing between consecutive job runs.
func NewCatchupCoordinator(
	jobs []JobSpec,
	ops map[string]Operation,
	ledger schedulerdb.Repository,
	clk clock.Clock,
	logger *slog.Logger,
	delay time.Duration,
) *CatchupCoordinator {
	if clk == nil {
		clk = clock.Real{}
	}
	if delay <= 0 {
		delay = time.Nanosecond
	}
	return &CatchupCoordinator{
		jobs:    jobs,
		ops:     ops,
		ledger:  ledger,
		clock:   clk,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Run performs one recovery pass over all configured jobs. Individual job
// failures are recorded and counted but never abort the pass; only context
// cancellation stops it early.
func (c *CatchupCoordinator) Run(ctx context.Context) (CatchupReport, error) {
	report := CatchupReport{Checked: len(c.jobs)}

	overdue := make([]JobSpec, 0, len(c.jobs))
	for _, spec := range c.jobs {
		due, err := c.isOverdue(ctx, spec)
		if err != nil {
			return report, fmt.Errorf("schedulerservice.Run: %w", err)
		}
		if due {
			overdue = append(overdue, spec)
		}
	}
	report.Overdue = len(overdue)
	if len(overdue) == 0 {
		c.logger.InfoContext(ctx, "Catch-up pass found no overdue jobs", "checked", report.Checked)
		return report, nil
	}

	sort.SliceStable(overdue, func(i, j int) bool {
		return priorityRank[overdue[i].Priority] < priorityRank[overdue[j].Priority]
	})

	for _, spec := range overdue {
		if err := c.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("schedulerservice.Run: %w", err)
		}
		switch c.runOne(ctx, spec) {
		case schedulerdb.JobStatusSuccess:
			report.Succeeded++
		case schedulerdb.JobStatusSkipped:
			report.Skipped++
		case schedulerdb.JobStatusFailed:
			report.Failed++
		}
	}

	c.logger.InfoContext(ctx, "Catch-up pass complete",
		"overdue", report.Overdue,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

func (c *CatchupCoordinator) isOverdue(ctx context.Context, spec JobSpec) (bool, error) {
	record, err := c.ledger.GetByName(ctx, nil, spec.ID)
	if errors.Is(err, schedulerdb.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return c.clock.Now().Sub(record.LastExecution) > classThresholds[spec.Class], nil
}

func (c *CatchupCoordinator) runOne(ctx context.Context, spec JobSpec) schedulerdb.JobStatus {
	jobCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	c.logger.InfoContext(ctx, "Running overdue job", "job", spec.ID, "priority", string(spec.Priority))
	err := c.ops[spec.Operation](jobCtx)

	status := schedulerdb.JobStatusSuccess
	lastError := ""
	switch {
	case errors.Is(err, ErrNothingToDo):
		status = schedulerdb.JobStatusSkipped
	case err != nil:
		status = schedulerdb.JobStatusFailed
		lastError = err.Error()
		c.logger.ErrorContext(ctx, "Overdue job failed", "job", spec.ID, "error", err)
	}

	if err := c.ledger.RecordExecution(ctx, nil, spec.ID, status, lastError, c.clock.Now()); err != nil {
		c.logger.ErrorContext(ctx, "Failed to record job execution", "job", spec.ID, "error", err)
	}
	return status
}
