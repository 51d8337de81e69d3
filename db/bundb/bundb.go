// db/bundb/bundb.go
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	leaguedb "github.com/streakline/league-engine/app/modules/league/infrastructure/repositories"
	schedulerdb "github.com/streakline/league-engine/app/modules/scheduler/infrastructure/repositories"
	userdb "github.com/streakline/league-engine/app/modules/user/infrastructure/repositories"
	"github.com/streakline/league-engine/config"
)

// DBService bundles the module repositories on one shared bun.DB.
type DBService struct {
	LeagueDB    *leaguedb.Impl
	UserDB      *userdb.Impl
	SchedulerDB *schedulerdb.Impl
	db          *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// NewBunDBService initializes a new DBService with the provided Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	dbService := &DBService{
		LeagueDB:    &leaguedb.Impl{DB: db},
		UserDB:      &userdb.Impl{DB: db},
		SchedulerDB: &schedulerdb.Impl{DB: db},
		db:          db,
	}

	db.RegisterModel(&leaguedb.Week{})
	db.RegisterModel(&leaguedb.Competitor{})
	db.RegisterModel(&leaguedb.TransitionHistory{})
	db.RegisterModel(&userdb.User{})
	db.RegisterModel(&schedulerdb.JobExecution{})

	return dbService, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
