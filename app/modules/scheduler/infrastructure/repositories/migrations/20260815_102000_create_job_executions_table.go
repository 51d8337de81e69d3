package schedulermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	schedulerdb "github.com/streakline/league-engine/app/modules/scheduler/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating job_executions table...")

		if _, err := db.NewCreateTable().Model((*schedulerdb.JobExecution)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_job_executions_name ON job_executions (name)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Job executions table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().Model((*schedulerdb.JobExecution)(nil)).IfExists().Exec(ctx)
		return err
	})
}
