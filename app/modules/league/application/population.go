package leagueservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
)

// PopulateCurrentWeek tops up every under-filled pod of the current week
// with synthetic competitors. The whole fill is one transaction.
func (s *LeagueService) PopulateCurrentWeek(ctx context.Context) (*PopulationSummary, error) {
	week, err := s.CurrentWeek(ctx)
	if err != nil {
		return nil, err
	}

	var summary PopulationSummary
	err = s.instrument(ctx, "populate_bots", func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			summary, err = s.populateWeek(ctx, db, week.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// populateWeek fills every existing pod of the week to capacity. Each pod's
// competitor set is read under row locks before the deficit is computed, so
// a concurrent fill of the same pod cannot overshoot capacity.
func (s *LeagueService) populateWeek(ctx context.Context, db bun.IDB, weekID int64) (PopulationSummary, error) {
	var summary PopulationSummary

	pods, err := s.repo.ListPods(ctx, db, weekID)
	if err != nil {
		return summary, fmt.Errorf("failed to list pods: %w", err)
	}

	for _, pod := range pods {
		added, err := s.fillPod(ctx, db, weekID, pod)
		if err != nil {
			return summary, err
		}
		if added > 0 {
			summary.PodsFilled++
			summary.BotsAdded += added
		}
	}

	s.logger.InfoContext(ctx, "Populated week with bots",
		"week_id", weekID,
		"pods_filled", summary.PodsFilled,
		"bots_added", summary.BotsAdded,
	)
	return summary, nil
}

func (s *LeagueService) fillPod(ctx context.Context, db bun.IDB, weekID int64, pod leaguedb.PodKey) (int, error) {
	members, err := s.repo.GetPodForUpdate(ctx, db, weekID, pod.League, pod.Pod)
	if err != nil {
		return 0, fmt.Errorf("failed to lock pod %s/%d: %w", pod.League, pod.Pod, err)
	}

	deficit := leaguedomain.PodCapacity - len(members)
	if deficit <= 0 {
		return 0, nil
	}

	taken := make(map[string]bool, len(members))
	for _, m := range members {
		taken[m.Name] = true
	}
	names := leaguedomain.GenerateBotNames(s.rnd, s.faker, taken, deficit)
	if len(names) < deficit {
		return 0, errors.New("bot name generation came up short")
	}

	bots := make([]*leaguedb.Competitor, 0, deficit)
	for i := 0; i < deficit; i++ {
		profile := leaguedomain.PickProfile(s.rnd)
		bots = append(bots, &leaguedb.Competitor{
			WeekID:          weekID,
			League:          pod.League,
			PodNumber:       pod.Pod,
			Name:            names[i],
			Points:          profile.InitialPoints(s.rnd),
			Position:        len(members) + i + 1,
			IsReal:          false,
			BehaviorProfile: profile,
		})
	}

	if err := s.repo.InsertCompetitors(ctx, db, bots); err != nil {
		return 0, fmt.Errorf("failed to insert bots for pod %s/%d: %w", pod.League, pod.Pod, err)
	}
	return len(bots), nil
}
