package leagueservice

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	"github.com/streakline/league-engine/app/modules/notification"
)

func seedPod(repo *fakeRepo, directory *fakeDirectory, weekID int64, league leaguedomain.League, size int) {
	for i := 0; i < size; i++ {
		user := fmt.Sprintf("user-%02d", i)
		repo.addCompetitor(leaguedb.Competitor{
			WeekID: weekID, League: league, PodNumber: 1,
			UserID: user, Name: user, IsReal: true,
		})
		// Distinct totals: user-00 scores highest.
		directory.totals[user] = 1000 - i*10
	}
}

func TestProcessWeekEndFullPod(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	week := repo.addWeek(monday, false)
	seedPod(repo, directory, week.ID, leaguedomain.LeagueSilver, 20)

	publisher := newCapturePublisher()
	svc := newTestService(repo, directory, publisher)

	result, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	require.NoError(t, err)

	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, 3, result.Promoted)
	assert.Equal(t, 3, result.Relegated)
	assert.Equal(t, 14, result.Stayed)
	assert.Equal(t, 20, result.TotalProcessed)
	assert.True(t, repo.weeks[week.ID].Processed)

	outcomes := map[string]leaguedomain.Outcome{}
	for _, e := range repo.history {
		outcomes[e.UserID] = e.Outcome
	}
	assert.Equal(t, leaguedomain.OutcomePromoted, outcomes["user-00"])
	assert.Equal(t, leaguedomain.OutcomePromoted, outcomes["user-02"])
	assert.Equal(t, leaguedomain.OutcomeStayed, outcomes["user-03"])
	assert.Equal(t, leaguedomain.OutcomeStayed, outcomes["user-16"])
	assert.Equal(t, leaguedomain.OutcomeRelegated, outcomes["user-17"])
	assert.Equal(t, leaguedomain.OutcomeRelegated, outcomes["user-19"])

	// League moves follow the outcomes.
	assert.Equal(t, leaguedomain.LeagueGold, directory.leagues["user-00"])
	assert.Equal(t, leaguedomain.LeagueSilver, directory.leagues["user-05"])
	assert.Equal(t, leaguedomain.LeagueBronze, directory.leagues["user-19"])

	assert.Equal(t, 20, publisher.count(notification.TopicMemberTransition))
	assert.Equal(t, 1, publisher.count(notification.TopicWeekProcessed))
}

func TestProcessWeekEndIdempotent(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	week := repo.addWeek(monday, false)
	seedPod(repo, directory, week.ID, leaguedomain.LeagueGold, 10)

	svc := newTestService(repo, directory, newCapturePublisher())

	first, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	require.NoError(t, err)
	require.False(t, first.AlreadyProcessed)
	historyAfterFirst := len(repo.history)

	second, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, 0, second.TotalProcessed)
	assert.Len(t, repo.history, historyAfterFirst, "second call must not add history rows")
}

func TestProcessWeekEndAlreadyProcessedWeek(t *testing.T) {
	repo := newFakeRepo()
	week := repo.addWeek(monday, true)

	svc := newTestService(repo, newFakeDirectory(), newCapturePublisher())
	result, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	require.NoError(t, err)

	assert.True(t, result.AlreadyProcessed)
	assert.Equal(t, 0, result.TotalProcessed)
	assert.Empty(t, repo.history)
}

func TestProcessWeekEndPodOfThree(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	week := repo.addWeek(monday, false)
	seedPod(repo, directory, week.ID, leaguedomain.LeagueGold, 3)

	svc := newTestService(repo, directory, newCapturePublisher())
	result, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Promoted)
	assert.Equal(t, 1, result.Relegated)
	assert.Equal(t, 1, result.Stayed)
}

func TestProcessWeekEndBoundaryLeagues(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	week := repo.addWeek(monday, false)

	// A diamond pod and a bronze pod of 10 each.
	for i := 0; i < 10; i++ {
		top := fmt.Sprintf("top-%02d", i)
		bottom := fmt.Sprintf("bottom-%02d", i)
		repo.addCompetitor(leaguedb.Competitor{
			WeekID: week.ID, League: leaguedomain.LeagueDiamond, PodNumber: 1,
			UserID: top, Name: top, IsReal: true,
		})
		repo.addCompetitor(leaguedb.Competitor{
			WeekID: week.ID, League: leaguedomain.LeagueBronze, PodNumber: 1,
			UserID: bottom, Name: bottom, IsReal: true,
		})
		directory.totals[top] = 100 - i
		directory.totals[bottom] = 100 - i
	}

	svc := newTestService(repo, directory, newCapturePublisher())
	_, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	require.NoError(t, err)

	for _, e := range repo.history {
		if e.League == leaguedomain.LeagueDiamond {
			assert.NotEqual(t, leaguedomain.OutcomePromoted, e.Outcome,
				"no promotion out of the top league")
		}
		if e.League == leaguedomain.LeagueBronze {
			assert.NotEqual(t, leaguedomain.OutcomeRelegated, e.Outcome,
				"no relegation out of the bottom league")
		}
	}
}

func TestProcessWeekEndCountsBotsInAggregateOnly(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	week := repo.addWeek(monday, false)

	for i := 0; i < 5; i++ {
		user := fmt.Sprintf("real-%d", i)
		repo.addCompetitor(leaguedb.Competitor{
			WeekID: week.ID, League: leaguedomain.LeagueSilver, PodNumber: 1,
			UserID: user, Name: user, IsReal: true,
		})
		directory.totals[user] = 50 - i
	}
	for i := 0; i < 5; i++ {
		repo.addCompetitor(leaguedb.Competitor{
			WeekID: week.ID, League: leaguedomain.LeagueSilver, PodNumber: 1,
			Name: fmt.Sprintf("Bot %d", i), Points: 200, IsReal: false,
			BehaviorProfile: leaguedomain.ProfileGrinder,
		})
	}

	svc := newTestService(repo, directory, newCapturePublisher())
	result, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	require.NoError(t, err)

	// Bots hold the top positions with 200 points each.
	assert.Equal(t, 3, result.BotsPromoted)
	assert.Equal(t, 0, result.Promoted)
	assert.Equal(t, 5, result.TotalProcessed, "history only for real competitors")
	for _, e := range repo.history {
		assert.NotEmpty(t, e.UserID)
	}
}

func TestProcessWeekEndDetectsOrphanHistory(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	week := repo.addWeek(monday, false)
	seedPod(repo, directory, week.ID, leaguedomain.LeagueGold, 10)

	// History rows without the processed flag should never occur; both are
	// written in one transaction.
	repo.history = append(repo.history, &leaguedb.TransitionHistory{
		WeekID: week.ID, UserID: "user-00", League: leaguedomain.LeagueGold,
	})

	svc := newTestService(repo, directory, newCapturePublisher())

	_, err := svc.ProcessWeekEnd(context.Background(), week.ID)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}
