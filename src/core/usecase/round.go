package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"cookoff/src/core/domain"
	"cookoff/src/core/ports"
)

// RoundService owns the round lifecycle: upcoming -> voting_open ->
// finalized. Finalization fires on either of two independent triggers
// evaluated after every rating or finalization-vote write: the completion
// rule (every registered player finished voting) or the quorum rule
// (enough manual finalization votes).
type RoundService struct {
	repo       ports.ContestRepository
	completion *CompletionService
	scoring    *ScoringService
	quorum     int
	log        *slog.Logger
}

func NewRoundService(repo ports.ContestRepository, completion *CompletionService, scoring *ScoringService, quorum int, log *slog.Logger) *RoundService {
	if quorum <= 0 {
		quorum = domain.DefaultFinalizeQuorum
	}
	return &RoundService{
		repo:       repo,
		completion: completion,
		scoring:    scoring,
		quorum:     quorum,
		log:        log,
	}
}

// Create registers a new upcoming round. An empty name gets a sequential
// default.
func (s *RoundService) Create(ctx context.Context, name string) (*domain.Round, error) {
	if name == "" {
		latest, err := s.repo.GetLatestRound(ctx)
		if err != nil {
			return nil, err
		}
		var next int64 = 1
		if latest != nil {
			next = latest.ID + 1
		}
		name = fmt.Sprintf("Round %d", next)
	}
	return s.repo.CreateRound(ctx, name)
}

// OpenVoting moves an upcoming round to voting_open. Only one round may
// be open at a time; the repository rejects the transition otherwise.
func (s *RoundService) OpenVoting(ctx context.Context, roundID int64) (*domain.Round, error) {
	round, err := s.repo.OpenRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	s.log.Info("round opened for voting", "round_id", round.ID, "name", round.Name)
	return round, nil
}

// Get returns a round by id.
func (s *RoundService) Get(ctx context.Context, roundID int64) (*domain.Round, error) {
	return s.repo.GetRoundByID(ctx, roundID)
}

// Open returns the currently open round, if any.
func (s *RoundService) Open(ctx context.Context) (*domain.Round, error) {
	return s.repo.GetOpenRound(ctx)
}

// List returns all rounds, newest first.
func (s *RoundService) List(ctx context.Context) ([]domain.Round, error) {
	return s.repo.ListRounds(ctx)
}

// CheckFinalization evaluates both finalization triggers for a round and
// performs the transition when one fires. It reports whether this call
// finalized the round.
//
// A store read failure aborts the check and leaves the round open;
// finalization is never attempted on incomplete information. The next
// triggering event retries naturally. Concurrent triggers racing on the
// same round are resolved by the repository's compare-and-set transition:
// losing the race is a no-op, not an error.
func (s *RoundService) CheckFinalization(ctx context.Context, roundID int64) (bool, error) {
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return false, err
	}
	if !round.Open() {
		return false, nil
	}

	eval, err := s.completion.Evaluate(ctx, roundID)
	if err != nil {
		return false, err
	}
	if eval.FullyComplete {
		return s.finalize(ctx, round, "all registered players completed voting")
	}

	votes, err := s.repo.CountFinalizationVotes(ctx, roundID)
	if err != nil {
		return false, domain.NewStoreError("count finalization votes", err)
	}
	if votes >= s.quorum {
		return s.finalize(ctx, round, fmt.Sprintf("finalization quorum reached (%d/%d)", votes, s.quorum))
	}

	return false, nil
}

func (s *RoundService) finalize(ctx context.Context, round *domain.Round, reason string) (bool, error) {
	won, err := s.repo.FinalizeRound(ctx, round.ID)
	if err != nil {
		return false, domain.NewStoreError("finalize round", err)
	}
	if !won {
		// Another trigger got there first; nothing left to do.
		s.log.Debug("round already finalized", "round_id", round.ID)
		return false, nil
	}

	s.log.Info("round finalized", "round_id", round.ID, "name", round.Name, "reason", reason)

	// The round stays finalized even if scoring fails partway; the
	// administrative recompute repairs statistics.
	if err := s.scoring.ScoreRound(ctx, round.ID); err != nil {
		s.log.Error("scoring failed after finalization", "round_id", round.ID, "error", err)
	}
	return true, nil
}
