package leagueservice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	"github.com/streakline/league-engine/app/modules/notification"
	userservice "github.com/streakline/league-engine/app/modules/user/application"
)

var monday = time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)

func TestStartSeasonRejectsDuplicateStartDate(t *testing.T) {
	repo := newFakeRepo()
	repo.addWeek(monday, false)
	svc := newTestService(repo, newFakeDirectory(), newCapturePublisher())

	_, err := svc.StartSeason(context.Background(), monday)
	require.ErrorIs(t, err, ErrSeasonExists)
	assert.Len(t, repo.weeks, 1, "no second week may be created")
}

func TestStartSeasonDistributesAndFillsPods(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	for i := 0; i < 12; i++ {
		directory.active = append(directory.active, userservice.ActiveParticipant{
			UserID: fmt.Sprintf("user-%02d", i),
			Name:   fmt.Sprintf("User %02d", i),
		})
	}
	publisher := newCapturePublisher()
	svc := newTestService(repo, directory, publisher)

	result, err := svc.StartSeason(context.Background(), monday)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Distribution.Participants)
	// 12 newcomers make bronze pods of 10 and 2; the second pod gains 8 bots.
	assert.Equal(t, 8, result.Population.BotsAdded)

	competitors, err := repo.ListCompetitorsByWeek(context.Background(), nil, result.WeekID)
	require.NoError(t, err)
	assert.Len(t, competitors, 20)

	podSizes := map[int]int{}
	for _, c := range competitors {
		assert.Equal(t, leaguedomain.LeagueBronze, c.League)
		podSizes[c.PodNumber]++
		if !c.IsReal {
			assert.Empty(t, c.UserID, "bots must not hold a participant reference")
			assert.True(t, c.BehaviorProfile.IsValid())
		}
	}
	for pod, size := range podSizes {
		assert.LessOrEqual(t, size, leaguedomain.PodCapacity, "pod %d over capacity", pod)
	}

	assert.Equal(t, 1, publisher.count(notification.TopicSeasonStarted))
}

func TestStartSeasonPlacesReturningPlayersByHistory(t *testing.T) {
	repo := newFakeRepo()
	repo.standings["veteran"] = priorStanding(leaguedomain.LeagueSilver, 80, leaguedomain.OutcomePromoted)
	repo.standings["slumped"] = priorStanding(leaguedomain.LeagueSilver, 10, leaguedomain.OutcomeRelegated)

	directory := newFakeDirectory()
	directory.active = []userservice.ActiveParticipant{
		{UserID: "veteran", Name: "Veteran"},
		{UserID: "slumped", Name: "Slumped"},
		{UserID: "fresh", Name: "Fresh"},
	}
	svc := newTestService(repo, directory, newCapturePublisher())

	result, err := svc.StartSeason(context.Background(), monday)
	require.NoError(t, err)

	competitors, err := repo.ListCompetitorsByWeek(context.Background(), nil, result.WeekID)
	require.NoError(t, err)

	byUser := map[string]leaguedomain.League{}
	for _, c := range competitors {
		if c.IsReal {
			byUser[c.UserID] = c.League
		}
	}
	assert.Equal(t, leaguedomain.LeagueGold, byUser["veteran"])
	assert.Equal(t, leaguedomain.LeagueBronze, byUser["slumped"])
	assert.Equal(t, leaguedomain.LeagueBronze, byUser["fresh"])
}

func TestStartSeasonDuplicateParticipantAborts(t *testing.T) {
	repo := newFakeRepo()
	directory := newFakeDirectory()
	directory.active = []userservice.ActiveParticipant{
		{UserID: "dup", Name: "Dup"},
		{UserID: "dup", Name: "Dup Again"},
	}
	svc := newTestService(repo, directory, newCapturePublisher())

	_, err := svc.StartSeason(context.Background(), monday)
	require.ErrorIs(t, err, ErrDataIntegrity)
}

func TestCurrentWeekNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeDirectory(), newCapturePublisher())

	_, err := svc.CurrentWeek(context.Background())
	require.ErrorIs(t, err, ErrWeekNotFound)
}

func priorStanding(league leaguedomain.League, points int, outcome leaguedomain.Outcome) leaguedb.PriorStanding {
	return leaguedb.PriorStanding{League: league, Points: points, Outcome: outcome}
}
