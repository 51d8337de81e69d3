package leagueservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	"github.com/streakline/league-engine/app/modules/notification"
)

// StartSeason creates the week for startDate, distributes the active
// participants into pods, and fills under-populated pods with bots.
//
// The start-date check runs under a row lock inside the same transaction as
// the creation, so concurrent triggers (timer, catch-up, operator) cannot
// both create a week for the same date: the loser fails with
// ErrSeasonExists and changes nothing.
func (s *LeagueService) StartSeason(ctx context.Context, startDate time.Time) (*StartSeasonResult, error) {
	startDate = startDate.Truncate(24 * time.Hour)
	result := &StartSeasonResult{}

	err := s.instrument(ctx, "start_season", func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			existing, err := s.repo.GetWeekByStartDateForUpdate(ctx, db, startDate)
			if err != nil && !errors.Is(err, leaguedb.ErrNotFound) {
				return fmt.Errorf("failed to check existing week: %w", err)
			}
			if existing != nil {
				return fmt.Errorf("%w: %s", ErrSeasonExists, startDate.Format("2006-01-02"))
			}

			week := &leaguedb.Week{StartDate: startDate}
			if err := s.repo.CreateWeek(ctx, db, week); err != nil {
				return fmt.Errorf("failed to create week: %w", err)
			}
			result.WeekID = week.ID

			distribution, err := s.distributeWeek(ctx, db, week.ID)
			if err != nil {
				return err
			}
			result.Distribution = distribution

			population, err := s.populateWeek(ctx, db, week.ID)
			if err != nil {
				return err
			}
			result.Population = population

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Season started",
		"week_id", result.WeekID,
		"start_date", startDate.Format("2006-01-02"),
		"participants", result.Distribution.Participants,
		"bots_added", result.Population.BotsAdded,
	)

	s.notifier.Publish(ctx, notification.TopicSeasonStarted, notification.SeasonStartedPayload{
		WeekID:      result.WeekID,
		StartDate:   startDate.Format("2006-01-02"),
		Distributed: result.Distribution.Participants,
		BotsAdded:   result.Population.BotsAdded,
	})

	return result, nil
}

// CurrentWeek returns the most recently started week, or ErrWeekNotFound.
func (s *LeagueService) CurrentWeek(ctx context.Context) (*leaguedb.Week, error) {
	week, err := s.repo.CurrentWeek(ctx, nil)
	if err != nil {
		if errors.Is(err, leaguedb.ErrNotFound) {
			return nil, ErrWeekNotFound
		}
		return nil, fmt.Errorf("failed to load current week: %w", err)
	}
	return week, nil
}
