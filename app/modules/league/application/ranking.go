package leagueservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
)

// RefreshCurrentWeekRanking runs a standalone sync-and-rank pass over the
// current week in its own transaction.
func (s *LeagueService) RefreshCurrentWeekRanking(ctx context.Context) (*RankingSummary, error) {
	week, err := s.CurrentWeek(ctx)
	if err != nil {
		return nil, err
	}

	var summary RankingSummary
	err = s.instrument(ctx, "refresh_ranking", func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			summary, err = s.SyncAndRank(ctx, db, week.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// SyncAndRank overwrites every real competitor's points with the directory's
// authoritative total, then assigns rank positions independently per pod:
// points descending, ties broken by competitor id ascending.
//
// The operation composes: pass the caller's transaction via db to make it
// part of a larger atomic operation, or pass nil to run against the
// repository's own connection.
func (s *LeagueService) SyncAndRank(ctx context.Context, db bun.IDB, weekID int64) (RankingSummary, error) {
	var summary RankingSummary

	competitors, err := s.repo.ListCompetitorsByWeek(ctx, db, weekID)
	if err != nil {
		return summary, fmt.Errorf("failed to list competitors: %w", err)
	}

	realIDs := make([]string, 0, len(competitors))
	for _, c := range competitors {
		if c.IsReal {
			realIDs = append(realIDs, c.UserID)
		}
	}

	totals, err := s.users.PointTotals(ctx, db, realIDs)
	if err != nil {
		return summary, fmt.Errorf("failed to sync point totals: %w", err)
	}

	for i, c := range competitors {
		if !c.IsReal {
			continue
		}
		points := totals[c.UserID]
		if err := s.repo.SetCompetitorPoints(ctx, db, c.ID, points); err != nil {
			return summary, fmt.Errorf("failed to sync points for competitor %d: %w", c.ID, err)
		}
		competitors[i].Points = points
		summary.RealSynced++
	}

	pods := groupByPod(competitors)
	summary.Pods = len(pods)
	for _, pod := range pods {
		ranked := make([]leaguedomain.RankedCompetitor, 0, len(pod))
		for _, c := range pod {
			ranked = append(ranked, leaguedomain.RankedCompetitor{ID: c.ID, Points: c.Points})
		}
		for position, rc := range leaguedomain.RankPod(ranked) {
			if err := s.repo.SetCompetitorPosition(ctx, db, rc.ID, position+1); err != nil {
				return summary, fmt.Errorf("failed to set position for competitor %d: %w", rc.ID, err)
			}
		}
	}

	return summary, nil
}

func groupByPod(competitors []leaguedb.Competitor) map[leaguedb.PodKey][]leaguedb.Competitor {
	pods := make(map[leaguedb.PodKey][]leaguedb.Competitor)
	for _, c := range competitors {
		key := leaguedb.PodKey{League: c.League, Pod: c.PodNumber}
		pods[key] = append(pods[key], c)
	}
	return pods
}
