package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"cookoff/src/core/ports"
)

// AdminService handles administrative maintenance of player statistics.
type AdminService struct {
	repo    ports.ContestRepository
	scoring *ScoringService
	log     *slog.Logger
}

func NewAdminService(repo ports.ContestRepository, scoring *ScoringService, log *slog.Logger) *AdminService {
	return &AdminService{repo: repo, scoring: scoring, log: log}
}

// ResetStats zeroes every player's cumulative statistics.
//
// Two named strategies: bulkUpdate first (single statement across the
// table), perRowUpdate as the fallback when the bulk statement fails.
func (s *AdminService) ResetStats(ctx context.Context) error {
	err := s.bulkUpdate(ctx)
	if err == nil {
		return nil
	}
	s.log.Warn("bulk stats reset failed, falling back to per-row updates", "error", err)
	return s.perRowUpdate(ctx)
}

func (s *AdminService) bulkUpdate(ctx context.Context) error {
	return s.repo.ResetAllStats(ctx)
}

func (s *AdminService) perRowUpdate(ctx context.Context) error {
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return err
	}
	var failed int
	for _, p := range players {
		if err := s.repo.ResetPlayerStats(ctx, p.ID); err != nil {
			failed++
			s.log.Error("per-row stats reset failed", "player_id", p.ID, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("stats reset incomplete: %d of %d players failed", failed, len(players))
	}
	return nil
}

// RecomputeStats rebuilds all player statistics from scratch by zeroing
// them and replaying every finalized round through the scoring engine.
// It honors the exact same formulas as live finalization, including the
// max-mean-with-ties winner rule. Returns the number of rounds replayed.
func (s *AdminService) RecomputeStats(ctx context.Context) (int, error) {
	rounds, err := s.repo.ListFinalizedRounds(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.ResetStats(ctx); err != nil {
		return 0, err
	}

	for _, round := range rounds {
		if err := s.scoring.ScoreRound(ctx, round.ID); err != nil {
			// Keep replaying; a later recompute can repair this round too.
			s.log.Error("recompute: round replay failed", "round_id", round.ID, "error", err)
		}
	}

	s.log.Info("player statistics recomputed", "rounds", len(rounds))
	return len(rounds), nil
}

// ResetContest clears all gameplay data while keeping registered players.
func (s *AdminService) ResetContest(ctx context.Context) error {
	if err := s.repo.ResetContest(ctx); err != nil {
		return err
	}
	s.log.Info("contest reset: gameplay data cleared")
	return nil
}
