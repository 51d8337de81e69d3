package leagueservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	"github.com/streakline/league-engine/app/modules/notification"
)

// ProcessCurrentWeek runs week-end processing for the most recent week.
func (s *LeagueService) ProcessCurrentWeek(ctx context.Context) (*ProcessWeekResult, error) {
	week, err := s.CurrentWeek(ctx)
	if err != nil {
		return nil, err
	}
	return s.ProcessWeekEnd(ctx, week.ID)
}

// ProcessWeekEnd finalizes a week: it re-ranks every pod against final
// totals, decides promotion/relegation per pod quota, snapshots every real
// competitor into transition history, moves each participant to their next
// league, and flips the week's processed flag.
//
// The operation is idempotent. It locks the week row first; a week already
// processed returns AlreadyProcessed with zero records touched. Everything
// else happens inside one transaction spanning all pods and leagues.
func (s *LeagueService) ProcessWeekEnd(ctx context.Context, weekID int64) (*ProcessWeekResult, error) {
	result := &ProcessWeekResult{WeekID: weekID}
	var transitions []notification.MemberTransitionPayload

	err := s.instrument(ctx, "process_week_end", func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			week, err := s.repo.GetWeekForUpdate(ctx, db, weekID)
			if err != nil {
				return fmt.Errorf("failed to lock week %d: %w", weekID, err)
			}
			if week.Processed {
				result.AlreadyProcessed = true
				return nil
			}

			existing, err := s.repo.CountHistoryByWeek(ctx, db, weekID)
			if err != nil {
				return err
			}
			if existing > 0 {
				return fmt.Errorf("%w: week %d has %d history rows but is not marked processed", ErrDataIntegrity, weekID, existing)
			}

			// Positions must reflect final totals before quotas apply.
			if _, err := s.SyncAndRank(ctx, db, weekID); err != nil {
				return err
			}

			competitors, err := s.repo.ListCompetitorsByWeek(ctx, db, weekID)
			if err != nil {
				return fmt.Errorf("failed to list competitors: %w", err)
			}

			var history []*leaguedb.TransitionHistory
			for _, pod := range groupByPod(competitors) {
				quota := leaguedomain.PodQuota(len(pod))
				for _, c := range pod {
					outcome := leaguedomain.ClassifyPosition(c.Position, len(pod), c.League, quota)

					if !c.IsReal {
						switch outcome {
						case leaguedomain.OutcomePromoted:
							result.BotsPromoted++
						case leaguedomain.OutcomeRelegated:
							result.BotsRelegated++
						}
						continue
					}

					history = append(history, &leaguedb.TransitionHistory{
						UserID:   c.UserID,
						WeekID:   weekID,
						League:   c.League,
						Points:   c.Points,
						Position: c.Position,
						Outcome:  outcome,
					})

					next := leaguedomain.NextLeague(c.League, outcome)
					if err := s.users.SetLeague(ctx, db, c.UserID, next); err != nil {
						return err
					}

					switch outcome {
					case leaguedomain.OutcomePromoted:
						result.Promoted++
					case leaguedomain.OutcomeRelegated:
						result.Relegated++
					default:
						result.Stayed++
					}
					transitions = append(transitions, transitionPayload(c, outcome, next))
				}
			}

			if err := s.repo.InsertTransitionHistory(ctx, db, history); err != nil {
				return fmt.Errorf("failed to persist transition history: %w", err)
			}

			if err := s.repo.MarkWeekProcessed(ctx, db, weekID); err != nil {
				return fmt.Errorf("failed to mark week processed: %w", err)
			}

			result.TotalProcessed = len(history)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyProcessed {
		s.logger.InfoContext(ctx, "Week already processed", "week_id", weekID)
		return result, nil
	}

	s.logger.InfoContext(ctx, "Week processed",
		"week_id", weekID,
		"promoted", result.Promoted,
		"relegated", result.Relegated,
		"stayed", result.Stayed,
	)

	for _, t := range transitions {
		s.notifier.Publish(ctx, notification.TopicMemberTransition, t)
	}
	s.notifier.Publish(ctx, notification.TopicWeekProcessed, notification.WeekProcessedPayload{
		WeekID:    weekID,
		Promoted:  result.Promoted,
		Relegated: result.Relegated,
		Stayed:    result.Stayed,
	})

	return result, nil
}

func transitionPayload(c leaguedb.Competitor, outcome leaguedomain.Outcome, next leaguedomain.League) notification.MemberTransitionPayload {
	var msg string
	switch outcome {
	case leaguedomain.OutcomePromoted:
		msg = fmt.Sprintf("You finished #%d and climbed to the %s league!", c.Position, next)
	case leaguedomain.OutcomeRelegated:
		msg = fmt.Sprintf("You finished #%d and dropped to the %s league.", c.Position, next)
	default:
		msg = fmt.Sprintf("You finished #%d and stay in the %s league.", c.Position, next)
	}
	return notification.MemberTransitionPayload{
		UserID:  c.UserID,
		Type:    string(outcome),
		Message: msg,
	}
}
