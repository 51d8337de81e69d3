package leagueservice

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	"github.com/streakline/league-engine/app/modules/notification"
	userservice "github.com/streakline/league-engine/app/modules/user/application"
	"github.com/streakline/league-engine/app/shared/clock"
	"github.com/streakline/league-engine/app/shared/metrics"
)

// activityWindow is the trailing window a participant must have been active
// in to enter the new week.
const activityWindow = 7 * 24 * time.Hour

// UserDirectory is the participant-directory contract the league engine
// consumes. The directory owns point accumulation and the user records; the
// league engine never writes them directly.
type UserDirectory interface {
	ActiveParticipants(ctx context.Context, now time.Time, window time.Duration) ([]userservice.ActiveParticipant, error)
	PointTotals(ctx context.Context, db bun.IDB, userIDs []string) (map[string]int, error)
	SetLeague(ctx context.Context, db bun.IDB, userID string, league leaguedomain.League) error
}

// LeagueService runs the season lifecycle: distribution, synthetic
// population and simulation, ranking, week-end processing, and retention.
type LeagueService struct {
	repo     leaguedb.Repository
	users    UserDirectory
	notifier *notification.Notifier
	db       *bun.DB
	logger   *slog.Logger
	metrics  metrics.OperationMetrics
	clock    clock.Clock
	rnd      *rand.Rand
	faker    *gofakeit.Faker

	retentionWeeks int
}

// Options tunes optional service behavior.
type Options struct {
	// RetentionWeeks is how many most-recent weeks survive cleanup.
	// Defaults to 12.
	RetentionWeeks int
	// Rand seeds the randomized choices (profiles, names, deltas).
	// Defaults to a time-seeded source.
	Rand *rand.Rand
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

// NewLeagueService creates a new LeagueService. db may be nil in tests, in
// which case operations run without transaction wrapping.
func NewLeagueService(
	repo leaguedb.Repository,
	users UserDirectory,
	notifier *notification.Notifier,
	db *bun.DB,
	logger *slog.Logger,
	operationMetrics metrics.OperationMetrics,
	opts Options,
) *LeagueService {
	if opts.RetentionWeeks <= 0 {
		opts.RetentionWeeks = 12
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if operationMetrics == nil {
		operationMetrics = metrics.Noop{}
	}

	return &LeagueService{
		repo:           repo,
		users:          users,
		notifier:       notifier,
		db:             db,
		logger:         logger,
		metrics:        operationMetrics,
		clock:          opts.Clock,
		rnd:            opts.Rand,
		faker:          gofakeit.New(uint64(opts.Rand.Int63())),
		retentionWeeks: opts.RetentionWeeks,
	}
}

// runInTx ensures the operation runs within a transaction. When the service
// has no database handle (unit tests), the operation runs with a nil db and
// repositories fall back to their own connections.
func (s *LeagueService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// instrument wraps an operation with attempt/success/failure metrics and a
// duration observation.
func (s *LeagueService) instrument(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, "LeagueService")

	err := fn(ctx)

	s.metrics.RecordOperationDuration(ctx, operation, "LeagueService", time.Since(start))
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operation, "LeagueService")
		return err
	}
	s.metrics.RecordOperationSuccess(ctx, operation, "LeagueService")
	return nil
}
