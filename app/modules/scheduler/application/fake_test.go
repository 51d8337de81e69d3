package schedulerservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/uptrace/bun"

	leagueservice "github.com/streakline/league-engine/app/modules/league/application"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	schedulerdb "github.com/streakline/league-engine/app/modules/scheduler/infrastructure/repositories"
	"github.com/streakline/league-engine/app/shared/clock"
	"github.com/streakline/league-engine/app/shared/metrics"
)

// fakeLedger is an in-memory job execution ledger.
type fakeLedger struct {
	mu      sync.Mutex
	records map[string]*schedulerdb.JobExecution
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[string]*schedulerdb.JobExecution{}}
}

func (l *fakeLedger) RecordExecution(ctx context.Context, _ bun.IDB, name string, status schedulerdb.JobStatus, lastError string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[name]
	if !ok {
		record = &schedulerdb.JobExecution{ID: int64(len(l.records) + 1), Name: name}
		l.records[name] = record
	}
	record.LastExecution = at
	record.LastStatus = status
	record.LastError = lastError
	record.ExecutionCount++
	return nil
}

func (l *fakeLedger) GetByName(ctx context.Context, _ bun.IDB, name string) (*schedulerdb.JobExecution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[name]
	if !ok {
		return nil, schedulerdb.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (l *fakeLedger) get(name string) *schedulerdb.JobExecution {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[name]
}

// fakeLeague stubs the season lifecycle with overridable funcs; unset
// methods succeed with zero-value results.
type fakeLeague struct {
	startSeasonFunc func(ctx context.Context, startDate time.Time) (*leagueservice.StartSeasonResult, error)
	simulateFunc    func(ctx context.Context) (*leagueservice.SimulationSummary, error)
	refreshFunc     func(ctx context.Context) (*leagueservice.RankingSummary, error)
	processFunc     func(ctx context.Context) (*leagueservice.ProcessWeekResult, error)
	cleanupFunc     func(ctx context.Context) (*leagueservice.CleanupResult, error)

	mu    sync.Mutex
	calls []string
}

var _ leagueservice.Service = (*fakeLeague)(nil)

func (f *fakeLeague) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeLeague) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLeague) StartSeason(ctx context.Context, startDate time.Time) (*leagueservice.StartSeasonResult, error) {
	f.record("StartSeason")
	if f.startSeasonFunc != nil {
		return f.startSeasonFunc(ctx, startDate)
	}
	return &leagueservice.StartSeasonResult{WeekID: 1}, nil
}

func (f *fakeLeague) CurrentWeek(ctx context.Context) (*leaguedb.Week, error) {
	f.record("CurrentWeek")
	return &leaguedb.Week{ID: 1}, nil
}

func (f *fakeLeague) PopulateCurrentWeek(ctx context.Context) (*leagueservice.PopulationSummary, error) {
	f.record("PopulateCurrentWeek")
	return &leagueservice.PopulationSummary{}, nil
}

func (f *fakeLeague) SimulateBotActivity(ctx context.Context) (*leagueservice.SimulationSummary, error) {
	f.record("SimulateBotActivity")
	if f.simulateFunc != nil {
		return f.simulateFunc(ctx)
	}
	return &leagueservice.SimulationSummary{}, nil
}

func (f *fakeLeague) RefreshCurrentWeekRanking(ctx context.Context) (*leagueservice.RankingSummary, error) {
	f.record("RefreshCurrentWeekRanking")
	if f.refreshFunc != nil {
		return f.refreshFunc(ctx)
	}
	return &leagueservice.RankingSummary{}, nil
}

func (f *fakeLeague) SyncAndRank(ctx context.Context, db bun.IDB, weekID int64) (leagueservice.RankingSummary, error) {
	f.record("SyncAndRank")
	return leagueservice.RankingSummary{}, nil
}

func (f *fakeLeague) ProcessCurrentWeek(ctx context.Context) (*leagueservice.ProcessWeekResult, error) {
	f.record("ProcessCurrentWeek")
	if f.processFunc != nil {
		return f.processFunc(ctx)
	}
	return &leagueservice.ProcessWeekResult{WeekID: 1}, nil
}

func (f *fakeLeague) ProcessWeekEnd(ctx context.Context, weekID int64) (*leagueservice.ProcessWeekResult, error) {
	f.record("ProcessWeekEnd")
	return &leagueservice.ProcessWeekResult{WeekID: weekID}, nil
}

func (f *fakeLeague) CleanupOldWeeks(ctx context.Context) (*leagueservice.CleanupResult, error) {
	f.record("CleanupOldWeeks")
	if f.cleanupFunc != nil {
		return f.cleanupFunc(ctx)
	}
	return &leagueservice.CleanupResult{}, nil
}

func newTestScheduler(league *fakeLeague, ledger *fakeLedger, clk clock.Clock) *Scheduler {
	logger := slog.New(slog.DiscardHandler)
	return NewScheduler(league, ledger, clk, logger, metrics.Noop{})
}
