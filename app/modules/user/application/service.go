package userservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	leaguedomain "github.com/streakline/league-engine/app/modules/league/domain"
	userdb "github.com/streakline/league-engine/app/modules/user/infrastructure/repositories"
)

// ActiveParticipant is the directory's view of an eligible participant.
type ActiveParticipant struct {
	UserID string
	Name   string
}

// UserService exposes the participant directory operations the league
// engine consumes: activity windows, authoritative point totals, and league
// placement writes.
type UserService struct {
	repo   Repository
	logger *slog.Logger
}

// Repository is the subset of userdb the service needs.
type Repository interface {
	ListActiveSince(ctx context.Context, db bun.IDB, cutoff time.Time) ([]userdb.User, error)
	GetPointTotals(ctx context.Context, db bun.IDB, userIDs []string) (map[string]int, error)
	SetLeague(ctx context.Context, db bun.IDB, userID string, league leaguedomain.League) error
}

// NewUserService creates a new UserService.
func NewUserService(repo Repository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// ActiveParticipants returns everyone active within the trailing window
// ending now.
func (s *UserService) ActiveParticipants(ctx context.Context, now time.Time, window time.Duration) ([]ActiveParticipant, error) {
	users, err := s.repo.ListActiveSince(ctx, nil, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	participants := make([]ActiveParticipant, 0, len(users))
	for _, u := range users {
		participants = append(participants, ActiveParticipant{UserID: u.ID, Name: u.DisplayName})
	}

	s.logger.DebugContext(ctx, "Resolved active participants",
		"window", window.String(),
		"count", len(participants),
	)
	return participants, nil
}

// PointTotals returns the authoritative point total per user id. The reads
// join the caller's transaction when one is supplied.
func (s *UserService) PointTotals(ctx context.Context, db bun.IDB, userIDs []string) (map[string]int, error) {
	totals, err := s.repo.GetPointTotals(ctx, db, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read point totals: %w", err)
	}
	return totals, nil
}

// SetLeague moves a user to a new league placement.
func (s *UserService) SetLeague(ctx context.Context, db bun.IDB, userID string, league leaguedomain.League) error {
	if err := s.repo.SetLeague(ctx, db, userID, league); err != nil {
		return fmt.Errorf("failed to set league for %s: %w", userID, err)
	}
	return nil
}
