package leagueservice

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	"github.com/streakline/league-engine/app/modules/notification"
	userservice "github.com/streakline/league-engine/app/modules/user/application"
	"github.com/streakline/league-engine/app/shared/clock"
)

// ------------------------
// Fake League Repo
// ------------------------

// fakeRepo is an in-memory leaguedb.Repository. It ignores the bun.IDB
// argument; the service under test runs without a real database.
type fakeRepo struct {
	weeks       map[int64]*leaguedb.Week
	competitors map[int64]*leaguedb.Competitor
	history     []*leaguedb.TransitionHistory
	standings   map[string]leaguedb.PriorStanding
	nextID      int64

	insertCompetitorsErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		weeks:       map[int64]*leaguedb.Week{},
		competitors: map[int64]*leaguedb.Competitor{},
		standings:   map[string]leaguedb.PriorStanding{},
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) addWeek(startDate time.Time, processed bool) *leaguedb.Week {
	week := &leaguedb.Week{ID: f.id(), StartDate: startDate, Processed: processed}
	f.weeks[week.ID] = week
	return week
}

func (f *fakeRepo) addCompetitor(c leaguedb.Competitor) *leaguedb.Competitor {
	c.ID = f.id()
	stored := c
	f.competitors[stored.ID] = &stored
	return &stored
}

func (f *fakeRepo) CreateWeek(_ context.Context, _ bun.IDB, week *leaguedb.Week) error {
	for _, w := range f.weeks {
		if w.StartDate.Equal(week.StartDate) {
			return errors.New("duplicate start date")
		}
	}
	week.ID = f.id()
	f.weeks[week.ID] = week
	return nil
}

func (f *fakeRepo) GetWeekByStartDateForUpdate(_ context.Context, _ bun.IDB, startDate time.Time) (*leaguedb.Week, error) {
	for _, w := range f.weeks {
		if w.StartDate.Equal(startDate) {
			return w, nil
		}
	}
	return nil, leaguedb.ErrNotFound
}

func (f *fakeRepo) GetWeekForUpdate(_ context.Context, _ bun.IDB, weekID int64) (*leaguedb.Week, error) {
	if w, ok := f.weeks[weekID]; ok {
		return w, nil
	}
	return nil, leaguedb.ErrNotFound
}

func (f *fakeRepo) CurrentWeek(_ context.Context, _ bun.IDB) (*leaguedb.Week, error) {
	var latest *leaguedb.Week
	for _, w := range f.weeks {
		if latest == nil || w.StartDate.After(latest.StartDate) {
			latest = w
		}
	}
	if latest == nil {
		return nil, leaguedb.ErrNotFound
	}
	return latest, nil
}

func (f *fakeRepo) MarkWeekProcessed(_ context.Context, _ bun.IDB, weekID int64) error {
	w, ok := f.weeks[weekID]
	if !ok || w.Processed {
		return leaguedb.ErrNoRowsAffected
	}
	w.Processed = true
	return nil
}

func (f *fakeRepo) InsertCompetitors(_ context.Context, _ bun.IDB, competitors []*leaguedb.Competitor) error {
	if f.insertCompetitorsErr != nil {
		return f.insertCompetitorsErr
	}
	for _, c := range competitors {
		c.ID = f.id()
		stored := *c
		f.competitors[stored.ID] = &stored
	}
	return nil
}

func (f *fakeRepo) ListCompetitorsByWeek(_ context.Context, _ bun.IDB, weekID int64) ([]leaguedb.Competitor, error) {
	var out []leaguedb.Competitor
	for _, c := range f.competitors {
		if c.WeekID == weekID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ListPods(_ context.Context, _ bun.IDB, weekID int64) ([]leaguedb.PodKey, error) {
	seen := map[leaguedb.PodKey]bool{}
	var pods []leaguedb.PodKey
	for _, c := range f.competitors {
		if c.WeekID != weekID {
			continue
		}
		key := leaguedb.PodKey{League: c.League, Pod: c.PodNumber}
		if !seen[key] {
			seen[key] = true
			pods = append(pods, key)
		}
	}
	sort.Slice(pods, func(i, j int) bool {
		if pods[i].League != pods[j].League {
			return pods[i].League < pods[j].League
		}
		return pods[i].Pod < pods[j].Pod
	})
	return pods, nil
}

func (f *fakeRepo) GetPodForUpdate(_ context.Context, _ bun.IDB, weekID int64, league leaguedomain.League, pod int) ([]leaguedb.Competitor, error) {
	var out []leaguedb.Competitor
	for _, c := range f.competitors {
		if c.WeekID == weekID && c.League == league && c.PodNumber == pod {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ListBotsByWeek(_ context.Context, _ bun.IDB, weekID int64) ([]leaguedb.Competitor, error) {
	var out []leaguedb.Competitor
	for _, c := range f.competitors {
		if c.WeekID == weekID && !c.IsReal {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) SetCompetitorPoints(_ context.Context, _ bun.IDB, competitorID int64, points int) error {
	c, ok := f.competitors[competitorID]
	if !ok {
		return leaguedb.ErrNotFound
	}
	c.Points = points
	return nil
}

func (f *fakeRepo) AddCompetitorPoints(_ context.Context, _ bun.IDB, competitorID int64, delta int) error {
	c, ok := f.competitors[competitorID]
	if !ok {
		return leaguedb.ErrNotFound
	}
	c.Points += delta
	return nil
}

func (f *fakeRepo) SetCompetitorPosition(_ context.Context, _ bun.IDB, competitorID int64, position int) error {
	c, ok := f.competitors[competitorID]
	if !ok {
		return leaguedb.ErrNotFound
	}
	c.Position = position
	return nil
}

func (f *fakeRepo) InsertTransitionHistory(_ context.Context, _ bun.IDB, entries []*leaguedb.TransitionHistory) error {
	for _, e := range entries {
		e.ID = f.id()
		stored := *e
		f.history = append(f.history, &stored)
	}
	return nil
}

func (f *fakeRepo) LatestStandings(_ context.Context, _ bun.IDB) (map[string]leaguedb.PriorStanding, error) {
	out := make(map[string]leaguedb.PriorStanding, len(f.standings))
	for k, v := range f.standings {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRepo) CountHistoryByWeek(_ context.Context, _ bun.IDB, weekID int64) (int, error) {
	count := 0
	for _, e := range f.history {
		if e.WeekID == weekID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) StaleWeekIDs(_ context.Context, _ bun.IDB, keep int) ([]int64, error) {
	var weeks []*leaguedb.Week
	for _, w := range f.weeks {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].StartDate.After(weeks[j].StartDate) })
	var stale []int64
	for i := keep; i < len(weeks); i++ {
		stale = append(stale, weeks[i].ID)
	}
	return stale, nil
}

func (f *fakeRepo) DeleteWeeks(_ context.Context, _ bun.IDB, weekIDs []int64) (int, error) {
	doomed := map[int64]bool{}
	for _, id := range weekIDs {
		doomed[id] = true
		delete(f.weeks, id)
	}
	deleted := 0
	for id, c := range f.competitors {
		if doomed[c.WeekID] {
			delete(f.competitors, id)
			deleted++
		}
	}
	var kept []*leaguedb.TransitionHistory
	for _, e := range f.history {
		if !doomed[e.WeekID] {
			kept = append(kept, e)
		}
	}
	f.history = kept
	return deleted, nil
}

var _ leaguedb.Repository = (*fakeRepo)(nil)

// ------------------------
// Fake User Directory
// ------------------------

type fakeDirectory struct {
	active  []userservice.ActiveParticipant
	totals  map[string]int
	leagues map[string]leaguedomain.League

	activeErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		totals:  map[string]int{},
		leagues: map[string]leaguedomain.League{},
	}
}

func (f *fakeDirectory) ActiveParticipants(_ context.Context, _ time.Time, _ time.Duration) ([]userservice.ActiveParticipant, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.active, nil
}

func (f *fakeDirectory) PointTotals(_ context.Context, _ bun.IDB, userIDs []string) (map[string]int, error) {
	out := map[string]int{}
	for _, id := range userIDs {
		out[id] = f.totals[id]
	}
	return out, nil
}

func (f *fakeDirectory) SetLeague(_ context.Context, _ bun.IDB, userID string, league leaguedomain.League) error {
	f.leagues[userID] = league
	return nil
}

// ------------------------
// Capturing publisher
// ------------------------

type capturePublisher struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{messages: map[string][]*message.Message{}}
}

func (p *capturePublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[topic] = append(p.messages[topic], messages...)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[topic])
}

// ------------------------
// Service factory
// ------------------------

func newTestService(repo *fakeRepo, directory *fakeDirectory, publisher *capturePublisher) *LeagueService {
	logger := slog.New(slog.DiscardHandler)
	return NewLeagueService(
		repo,
		directory,
		notification.NewNotifier(publisher, logger),
		nil,
		logger,
		nil,
		Options{
			Rand:  rand.New(rand.NewSource(1)),
			Clock: clock.NewFake(time.Date(2026, 8, 17, 12, 0, 0, 0, time.UTC)),
		},
	)
}
