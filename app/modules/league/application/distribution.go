package leagueservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
)

// distributeWeek assigns every participant active in the trailing window to
// a league and pod for the new week, seeded from each participant's most
// recent transition history. All competitor rows are inserted as one batch.
func (s *LeagueService) distributeWeek(ctx context.Context, db bun.IDB, weekID int64) (DistributionSummary, error) {
	summary := DistributionSummary{PodsByLeague: map[leaguedomain.League]int{}}

	participants, err := s.users.ActiveParticipants(ctx, s.clock.Now(), activityWindow)
	if err != nil {
		return summary, fmt.Errorf("failed to load active participants: %w", err)
	}
	if len(participants) == 0 {
		s.logger.WarnContext(ctx, "No active participants for new week", "week_id", weekID)
		return summary, nil
	}

	standings, err := s.repo.LatestStandings(ctx, db)
	if err != nil {
		return summary, fmt.Errorf("failed to load prior standings: %w", err)
	}

	seen := make(map[string]bool, len(participants))
	entrants := make([]leaguedomain.Entrant, 0, len(participants))
	for _, p := range participants {
		if seen[p.UserID] {
			return summary, fmt.Errorf("%w: duplicate participant %s in distribution batch", ErrDataIntegrity, p.UserID)
		}
		seen[p.UserID] = true

		entrant := leaguedomain.Entrant{UserID: p.UserID, Name: p.Name}
		if prior, ok := standings[p.UserID]; ok {
			entrant.Prior = &leaguedomain.PriorStanding{
				League:  prior.League,
				Points:  prior.Points,
				Outcome: prior.Outcome,
			}
		}
		entrants = append(entrants, entrant)
	}

	placements := leaguedomain.PlanDistribution(entrants)

	competitors := make([]*leaguedb.Competitor, 0, len(placements))
	for _, p := range placements {
		competitors = append(competitors, &leaguedb.Competitor{
			WeekID:    weekID,
			League:    p.League,
			PodNumber: p.Pod,
			UserID:    p.UserID,
			Name:      p.Name,
			Position:  p.Position,
			IsReal:    true,
		})
		if p.Pod > summary.PodsByLeague[p.League] {
			summary.PodsByLeague[p.League] = p.Pod
		}
	}

	if err := s.repo.InsertCompetitors(ctx, db, competitors); err != nil {
		return summary, fmt.Errorf("failed to insert distribution batch: %w", err)
	}

	summary.Participants = len(competitors)
	return summary, nil
}
