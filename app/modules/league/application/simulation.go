package leagueservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// SimulateBotActivity applies one day of synthetic point gains to every bot
// in the current week. Each bot either skips the day (per its profile's skip
// chance) or gains a delta drawn from the profile's range. All deltas apply
// in one transaction; any failure leaves every prior total untouched.
func (s *LeagueService) SimulateBotActivity(ctx context.Context) (*SimulationSummary, error) {
	week, err := s.CurrentWeek(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SimulationSummary{}
	err = s.instrument(ctx, "simulate_bot_activity", func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			bots, err := s.repo.ListBotsByWeek(ctx, db, week.ID)
			if err != nil {
				return fmt.Errorf("failed to list bots: %w", err)
			}
			summary.Bots = len(bots)

			for _, bot := range bots {
				delta, active := bot.BehaviorProfile.DailyDelta(s.rnd)
				if !active {
					summary.Skipped++
					continue
				}
				if err := s.repo.AddCompetitorPoints(ctx, db, bot.ID, delta); err != nil {
					return fmt.Errorf("failed to add points for bot %d: %w", bot.ID, err)
				}
				summary.Active++
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Simulated bot activity",
		"week_id", week.ID,
		"bots", summary.Bots,
		"active", summary.Active,
		"skipped", summary.Skipped,
	)
	return summary, nil
}
