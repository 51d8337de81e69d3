package usermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	userdb "github.com/streakline/league-engine/app/modules/user/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating users table...")

		if _, err := db.NewCreateTable().Model((*userdb.User)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_users_last_active ON users (last_active_at)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Users table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().Model((*userdb.User)(nil)).IfExists().Exec(ctx)
		return err
	})
}
