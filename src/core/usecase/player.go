package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"cookoff/src/core/domain"
	"cookoff/src/core/ports"
)

// PlayerService handles player registration and statistics queries.
type PlayerService struct {
	repo ports.ContestRepository
	log  *slog.Logger
}

func NewPlayerService(repo ports.ContestRepository, log *slog.Logger) *PlayerService {
	return &PlayerService{repo: repo, log: log}
}

// Register creates a player for a display name.
func (s *PlayerService) Register(ctx context.Context, displayName string) (*domain.Player, error) {
	if displayName == "" {
		return nil, domain.NewValidationError("display_name", "display name required")
	}
	return s.repo.RegisterPlayer(ctx, displayName)
}

// Get returns a player with their cumulative statistics.
func (s *PlayerService) Get(ctx context.Context, playerID uuid.UUID) (*domain.Player, *domain.PlayerStats, error) {
	player, err := s.repo.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.repo.GetPlayerStats(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	return player, stats, nil
}

// Leaderboard returns all players with statistics, ordered by total points.
func (s *PlayerService) Leaderboard(ctx context.Context) ([]ports.LeaderboardEntry, error) {
	return s.repo.Leaderboard(ctx)
}
