package leaguemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating league_weeks, league_competitors and league_transition_history tables...")

		if _, err := db.NewCreateTable().Model((*leaguedb.Week)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*leaguedb.Competitor)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*leaguedb.TransitionHistory)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_weeks_start_date ON league_weeks (start_date)").Exec(ctx); err != nil {
			return err
		}
		// One slot per real participant per week; bots have no user_id.
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_competitors_week_user ON league_competitors (week_id, user_id) WHERE user_id IS NOT NULL").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_competitors_week_pod ON league_competitors (week_id, league, pod_number)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_history_user_week ON league_transition_history (user_id, week_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_history_week ON league_transition_history (week_id)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("League tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping league tables...")

		if _, err := db.NewDropTable().Model((*leaguedb.TransitionHistory)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*leaguedb.Competitor)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*leaguedb.Week)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
