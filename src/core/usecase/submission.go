package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"cookoff/src/core/domain"
	"cookoff/src/core/ports"
)

// SubmissionService guards all gameplay writes: one dish per player per
// round, no self-rating, nothing after finalization. Rejections carry a
// distinguishable reason; the database unique constraints back-stop the
// checks so a race still surfaces as the same rejection rather than a
// silent overwrite.
type SubmissionService struct {
	repo   ports.ContestRepository
	rounds *RoundService
	log    *slog.Logger
}

func NewSubmissionService(repo ports.ContestRepository, rounds *RoundService, log *slog.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, rounds: rounds, log: log}
}

// SubmitDish enters a player's dish into an open round.
func (s *SubmissionService) SubmitDish(ctx context.Context, ownerID uuid.UUID, roundID int64, name, imageRef string) (*domain.Dish, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "dish name required")
	}
	if _, err := s.repo.GetPlayerByID(ctx, ownerID); err != nil {
		return nil, err
	}
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if !round.Open() {
		return nil, domain.NewRoundNotOpenError(round.Status)
	}
	return s.repo.CreateDish(ctx, roundID, ownerID, name, imageRef)
}

// SubmitRating records one voter's score for a dish and then runs the
// finalization check. The check is fire-and-forget: a failure leaves the
// round open and is retried by the next triggering event, so it never
// fails the rating write that succeeded.
//
// Returns the stored rating and whether this write finalized the round.
func (s *SubmissionService) SubmitRating(ctx context.Context, voterID uuid.UUID, dishID int64, score int) (*domain.Rating, bool, error) {
	if !domain.ValidScore(score) {
		return nil, false, domain.NewValidationError("score", "score must be between 1 and 10")
	}
	if _, err := s.repo.GetPlayerByID(ctx, voterID); err != nil {
		return nil, false, err
	}
	dish, err := s.repo.GetDishByID(ctx, dishID)
	if err != nil {
		return nil, false, err
	}
	if dish.OwnerID == voterID {
		return nil, false, domain.NewSelfRatingError()
	}
	round, err := s.repo.GetRoundByID(ctx, dish.RoundID)
	if err != nil {
		return nil, false, err
	}
	if !round.Open() {
		return nil, false, domain.NewRoundNotOpenError(round.Status)
	}

	rating, err := s.repo.CreateRating(ctx, dishID, voterID, score)
	if err != nil {
		return nil, false, err
	}

	finalized, err := s.rounds.CheckFinalization(ctx, round.ID)
	if err != nil {
		s.log.Warn("finalization check failed after rating; round stays open",
			"round_id", round.ID, "error", err)
	}
	return rating, finalized, nil
}

// VoteToFinalize casts a manual ballot to close the round, then runs the
// finalization check. Returns whether the round finalized.
func (s *SubmissionService) VoteToFinalize(ctx context.Context, voterID uuid.UUID, roundID int64) (bool, error) {
	if _, err := s.repo.GetPlayerByID(ctx, voterID); err != nil {
		return false, err
	}
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return false, err
	}
	if !round.Open() {
		return false, domain.NewRoundNotOpenError(round.Status)
	}

	if err := s.repo.CreateFinalizationVote(ctx, roundID, voterID); err != nil {
		return false, err
	}

	finalized, err := s.rounds.CheckFinalization(ctx, roundID)
	if err != nil {
		s.log.Warn("finalization check failed after vote; round stays open",
			"round_id", roundID, "error", err)
	}
	return finalized, nil
}

// FinalizationStatus lists who voted to close the round and the tally.
func (s *SubmissionService) FinalizationStatus(ctx context.Context, roundID int64) ([]uuid.UUID, int, error) {
	voters, err := s.repo.ListFinalizationVoters(ctx, roundID)
	if err != nil {
		return nil, 0, err
	}
	return voters, len(voters), nil
}

// ListDishes returns the dishes submitted to a round.
func (s *SubmissionService) ListDishes(ctx context.Context, roundID int64) ([]domain.Dish, error) {
	if _, err := s.repo.GetRoundByID(ctx, roundID); err != nil {
		return nil, err
	}
	return s.repo.ListDishesByRound(ctx, roundID)
}
