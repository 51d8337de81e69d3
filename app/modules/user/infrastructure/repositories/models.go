package userdb

import (
	"time"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
)

// User is the participant directory record. The directory owns point
// accumulation; the league engine only reads totals and activity and writes
// the league placement.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string              `bun:"id,pk"`
	DisplayName  string              `bun:"display_name,notnull"`
	League       leaguedomain.League `bun:"league,notnull,default:1"`
	Points       int                 `bun:"points,notnull,default:0"`
	LastActiveAt time.Time           `bun:"last_active_at,nullzero"`
	CreatedAt    time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
