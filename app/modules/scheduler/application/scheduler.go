package schedulerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	leagueservice "github.com/streakline/league-engine/app/modules/league/application"
	schedulerdb "github.com/streakline/league-engine/app/modules/scheduler/infrastructure/repositories"
	"github.com/streakline/league-engine/app/shared/clock"
	"github.com/streakline/league-engine/app/shared/metrics"
)

const (
	simulationHour = 3
	rankingHour    = 4

	// Week-end processing fires in the final hour of the cycle's last day;
	// a new season starts in the early hours of the first day.
	boundaryEndWeekday   = time.Sunday
	boundaryEndHour      = 23
	boundaryStartWeekday = time.Monday
	boundaryStartBefore  = 5

	retentionDayOfMonth = 1
	retentionHour       = 2
)

// Scheduler drives the season lifecycle on independent timers: daily bot
// simulation, daily ranking refresh, an hourly week-boundary check, and
// monthly retention cleanup. Every triggered action records its outcome to
// the job execution ledger.
type Scheduler struct {
	league  leagueservice.Service
	ledger  schedulerdb.Repository
	clock   clock.Clock
	logger  *slog.Logger
	metrics metrics.OperationMetrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	league leagueservice.Service,
	ledger schedulerdb.Repository,
	clk clock.Clock,
	logger *slog.Logger,
	operationMetrics metrics.OperationMetrics,
) *Scheduler {
	if clk == nil {
		clk = clock.Real{}
	}
	if operationMetrics == nil {
		operationMetrics = metrics.Noop{}
	}
	return &Scheduler{
		league:  league,
		ledger:  ledger,
		clock:   clk,
		logger:  logger,
		metrics: operationMetrics,
	}
}

// Start launches the timer loops. It is an error to start twice without an
// intervening Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	s.spawn(runCtx, JobBotActivity, s.nextDaily(simulationHour), s.simulateBotActivity)
	s.spawn(runCtx, JobRankRefresh, s.nextDaily(rankingHour), s.refreshRanking)
	s.spawn(runCtx, JobWeekBoundary, s.nextHourly, s.weekBoundaryCheck)
	s.spawn(runCtx, JobRetention, s.nextMonthly, s.cleanupOldWeeks)

	s.logger.InfoContext(ctx, "Scheduler started")
	return nil
}

// Stop cancels all timer loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.started = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}

	s.logger.Info("Scheduler stopped")
	return nil
}

// spawn runs one timer loop: wait until the next scheduled instant, execute,
// repeat.
func (s *Scheduler) spawn(ctx context.Context, name string, next func(time.Time) time.Time, op Operation) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			now := s.clock.Now()
			wait := next(now).Sub(now)
			select {
			case <-ctx.Done():
				return
			case <-s.clock.After(wait):
				s.Execute(ctx, name, op)
			}
		}
	}()
}

// Execute runs one job and records its outcome to the ledger. Failures are
// recorded and logged, never propagated: one job's failure must not take
// down the process or the loop.
func (s *Scheduler) Execute(ctx context.Context, name string, op Operation) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, name, "Scheduler")

	err := op(ctx)

	s.metrics.RecordOperationDuration(ctx, name, "Scheduler", time.Since(start))

	status := schedulerdb.JobStatusSuccess
	lastError := ""
	switch {
	case errors.Is(err, ErrNothingToDo):
		status = schedulerdb.JobStatusSkipped
		s.metrics.RecordOperationSuccess(ctx, name, "Scheduler")
	case err != nil:
		status = schedulerdb.JobStatusFailed
		lastError = err.Error()
		s.metrics.RecordOperationFailure(ctx, name, "Scheduler")
		s.logger.ErrorContext(ctx, "Scheduled job failed", "job", name, "error", err)
	default:
		s.metrics.RecordOperationSuccess(ctx, name, "Scheduler")
	}

	if err := s.ledger.RecordExecution(ctx, nil, name, status, lastError, s.clock.Now()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record job execution", "job", name, "error", err)
	}
}

// --- schedule math ---

func (s *Scheduler) nextDaily(hour int) func(time.Time) time.Time {
	return func(now time.Time) time.Time {
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}
}

func (s *Scheduler) nextHourly(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}

func (s *Scheduler) nextMonthly(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), retentionDayOfMonth, retentionHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

// --- bound operations ---

func (s *Scheduler) simulateBotActivity(ctx context.Context) error {
	_, err := s.league.SimulateBotActivity(ctx)
	if errors.Is(err, leagueservice.ErrWeekNotFound) {
		return fmt.Errorf("%w: %v", ErrNothingToDo, err)
	}
	return err
}

func (s *Scheduler) refreshRanking(ctx context.Context) error {
	_, err := s.league.RefreshCurrentWeekRanking(ctx)
	if errors.Is(err, leagueservice.ErrWeekNotFound) {
		return fmt.Errorf("%w: %v", ErrNothingToDo, err)
	}
	return err
}

// weekBoundaryCheck finalizes the current week near the end of its last day
// and starts the next week in the early hours of its first day. Outside
// either window the check is a skip. Starting is race-free: StartSeason
// refuses a duplicate start date under a row lock, and week-end processing
// is idempotent, so concurrent triggers collapse to one effect.
func (s *Scheduler) weekBoundaryCheck(ctx context.Context) error {
	now := s.clock.Now()

	if now.Weekday() == boundaryEndWeekday && now.Hour() >= boundaryEndHour {
		result, err := s.league.ProcessCurrentWeek(ctx)
		if errors.Is(err, leagueservice.ErrWeekNotFound) {
			return fmt.Errorf("%w: %v", ErrNothingToDo, err)
		}
		if err != nil {
			return err
		}
		if result.AlreadyProcessed {
			return ErrNothingToDo
		}
		return nil
	}

	if now.Weekday() == boundaryStartWeekday && now.Hour() < boundaryStartBefore {
		startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		_, err := s.league.StartSeason(ctx, startDate)
		if errors.Is(err, leagueservice.ErrSeasonExists) {
			return fmt.Errorf("%w: %v", ErrNothingToDo, err)
		}
		return err
	}

	return ErrNothingToDo
}

func (s *Scheduler) cleanupOldWeeks(ctx context.Context) error {
	_, err := s.league.CleanupOldWeeks(ctx)
	return err
}
