package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	leagueservice "github.com/streakline/league-engine/app/modules/league/application"
	"github.com/streakline/league-engine/app/modules/notification"
	schedulerservice "github.com/streakline/league-engine/app/modules/scheduler/application"
	userservice "github.com/streakline/league-engine/app/modules/user/application"
	"github.com/streakline/league-engine/app/shared/clock"
	"github.com/streakline/league-engine/app/shared/metrics"
	"github.com/streakline/league-engine/config"
	"github.com/streakline/league-engine/db/bundb"
	"github.com/streakline/league-engine/eventbus"
)

// App owns every long-lived component of the league engine process.
type App struct {
	Cfg           *config.Config
	LeagueService leagueservice.Service
	UserService   *userservice.UserService
	Scheduler     *schedulerservice.Scheduler
	Catchup       *schedulerservice.CatchupCoordinator

	db            *bundb.DBService
	publisher     message.Publisher
	logger        *slog.Logger
	metricsServer *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	var publisher message.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = eventbus.NewPublisher(cfg.NATS.URL, watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
	}
	notifier := notification.NewNotifier(publisher, logger)

	prom := metrics.NewPrometheusMetrics()

	userService := userservice.NewUserService(dbService.UserDB, logger)
	leagueService := leagueservice.NewLeagueService(
		dbService.LeagueDB,
		userService,
		notifier,
		dbService.GetDB(),
		logger,
		prom,
		leagueservice.Options{RetentionWeeks: cfg.League.RetentionWeeks},
	)

	scheduler := schedulerservice.NewScheduler(leagueService, dbService.SchedulerDB, clock.Real{}, logger, prom)

	// A broken job list disables startup recovery but not the timers; the
	// scheduled ticks still run every job on cadence.
	var catchup *schedulerservice.CatchupCoordinator
	jobs, err := schedulerservice.LoadJobSpecs(cfg.Scheduler.JobsFile, scheduler.Operations())
	if err != nil {
		logger.Error("Catch-up disabled: invalid job configuration", "error", err)
	} else {
		catchup = schedulerservice.NewCatchupCoordinator(
			jobs,
			scheduler.Operations(),
			dbService.SchedulerDB,
			clock.Real{},
			logger,
			cfg.Scheduler.CatchupJobDelay,
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())

	return &App{
		Cfg:           cfg,
		LeagueService: leagueService,
		UserService:   userService,
		Scheduler:     scheduler,
		Catchup:       catchup,
		db:            dbService,
		publisher:     publisher,
		logger:        logger,
		metricsServer: &http.Server{Addr: cfg.Observability.MetricsAddress, Handler: mux},
	}, nil
}

// Run performs the startup catch-up pass, starts the scheduler, and serves
// metrics until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if a.Catchup != nil {
		report, err := a.Catchup.Run(ctx)
		if err != nil {
			return fmt.Errorf("catch-up pass failed: %w", err)
		}
		a.logger.InfoContext(ctx, "Startup catch-up finished",
			"overdue", report.Overdue,
			"failed", report.Failed,
		)
	}

	if err := a.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

// Close shuts everything down in dependency order.
func (a *App) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error stopping scheduler", "error", err)
	}
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error stopping metrics server", "error", err)
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Error closing publisher", "error", err)
		}
	}
	if err := a.db.GetDB().Close(); err != nil {
		a.logger.Error("Error closing database connection", "error", err)
	}
}
