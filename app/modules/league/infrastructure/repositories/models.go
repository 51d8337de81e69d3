package leaguedb

import (
	"time"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
)

// Week represents one competitive cycle. Exactly one row exists per start
// date; the processed flag transitions false to true exactly once.
type Week struct {
	bun.BaseModel `bun:"table:league_weeks,alias:w"`

	ID        int64     `bun:"id,pk,autoincrement"`
	StartDate time.Time `bun:"start_date,notnull,unique"`
	Processed bool      `bun:"processed,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Competitor is one pod slot for one week, occupied by a real participant
// (UserID set) or a synthetic one (UserID empty, BehaviorProfile set).
type Competitor struct {
	bun.BaseModel `bun:"table:league_competitors,alias:c"`

	ID              int64                        `bun:"id,pk,autoincrement"`
	WeekID          int64                        `bun:"week_id,notnull"`
	League          leaguedomain.League          `bun:"league,notnull"`
	PodNumber       int                          `bun:"pod_number,notnull"`
	UserID          string                       `bun:"user_id,nullzero"`
	Name            string                       `bun:"name,notnull"`
	Points          int                          `bun:"points,notnull,default:0"`
	Position        int                          `bun:"position,notnull,default:0"`
	IsReal          bool                         `bun:"is_real,notnull"`
	BehaviorProfile leaguedomain.BehaviorProfile `bun:"behavior_profile,nullzero"`
}

// TransitionHistory is an immutable per-user snapshot written once when a
// week is processed. Only retention cleanup ever removes rows.
type TransitionHistory struct {
	bun.BaseModel `bun:"table:league_transition_history,alias:th"`

	ID       int64                `bun:"id,pk,autoincrement"`
	UserID   string               `bun:"user_id,notnull"`
	WeekID   int64                `bun:"week_id,notnull"`
	League   leaguedomain.League  `bun:"league,notnull"`
	Points   int                  `bun:"points,notnull"`
	Position int                  `bun:"position,notnull"`
	Outcome  leaguedomain.Outcome `bun:"outcome,notnull"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PriorStanding is a user's most recent history entry joined with its week's
// start date, used to seed distribution for a new week.
type PriorStanding struct {
	UserID   string               `bun:"user_id"`
	League   leaguedomain.League  `bun:"league"`
	Points   int                  `bun:"points"`
	Outcome  leaguedomain.Outcome `bun:"outcome"`
	WeekDate time.Time            `bun:"week_date"`
}
