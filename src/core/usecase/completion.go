package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"cookoff/src/core/domain"
	"cookoff/src/core/ports"
)

// PlayerCompletion tracks one registered player's progress through the
// rating set they are required to complete for a round.
type PlayerCompletion struct {
	HasDish   bool
	Required  int
	Completed int
}

// Complete reports whether the player finished their full required set.
// A player with nothing required (zero dishes, or the sole dish being
// their own) is never complete; a round must have something to rate.
func (pc PlayerCompletion) Complete() bool {
	return pc.Required > 0 && pc.Completed >= pc.Required
}

// Remaining is the number of dishes the player still has to rate.
func (pc PlayerCompletion) Remaining() int {
	if pc.Completed >= pc.Required {
		return 0
	}
	return pc.Required - pc.Completed
}

// Completion is the outcome of evaluating whether voting is done for a round.
type Completion struct {
	// FullyComplete is true when every registered player completed their
	// required set and at least one rating was cast.
	FullyComplete bool

	// VoterCount is the number of distinct players with at least one
	// counted (non-self) rating in the round.
	VoterCount int

	// PerPlayer holds progress for every registered player.
	PerPlayer map[uuid.UUID]PlayerCompletion
}

// EvaluateCompletion decides whether voting for a round is done.
//
// Every registered player, not just round participants, must rate every
// dish in the round except their own. Ratings for dishes outside the
// round must already be filtered out by the caller; self-ratings are
// discarded here as a defensive measure.
func EvaluateCompletion(players []uuid.UUID, dishes []domain.Dish, ratings []domain.Rating) Completion {
	owners := make(map[uuid.UUID]bool, len(dishes))
	dishOwner := make(map[int64]uuid.UUID, len(dishes))
	for _, d := range dishes {
		owners[d.OwnerID] = true
		dishOwner[d.ID] = d.OwnerID
	}

	counted := make(map[uuid.UUID]int)
	for _, r := range ratings {
		owner, ok := dishOwner[r.DishID]
		if !ok || owner == r.VoterID {
			continue
		}
		counted[r.VoterID]++
	}

	out := Completion{
		PerPlayer:  make(map[uuid.UUID]PlayerCompletion, len(players)),
		VoterCount: len(counted),
	}

	total := len(dishes)
	allComplete := len(players) > 0
	for _, p := range players {
		required := total
		if owners[p] {
			required = total - 1
		}
		pc := PlayerCompletion{
			HasDish:   owners[p],
			Required:  required,
			Completed: counted[p],
		}
		out.PerPlayer[p] = pc
		if !pc.Complete() {
			allComplete = false
		}
	}

	out.FullyComplete = allComplete && total > 0 && out.VoterCount > 0
	return out
}

// CompletionService exposes the voting-completeness check and the
// per-player progress read model. It performs no writes; scheduling of
// repeated progress calls belongs to the caller.
type CompletionService struct {
	repo   ports.ContestRepository
	quorum int
	log    *slog.Logger
}

func NewCompletionService(repo ports.ContestRepository, quorum int, log *slog.Logger) *CompletionService {
	if quorum <= 0 {
		quorum = domain.DefaultFinalizeQuorum
	}
	return &CompletionService{repo: repo, quorum: quorum, log: log}
}

// Evaluate runs the completion check for a round against current store state.
func (s *CompletionService) Evaluate(ctx context.Context, roundID int64) (Completion, error) {
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return Completion{}, domain.NewStoreError("list players", err)
	}
	dishes, err := s.repo.ListDishesByRound(ctx, roundID)
	if err != nil {
		return Completion{}, domain.NewStoreError("list dishes", err)
	}
	ratings, err := s.repo.ListRatingsByRound(ctx, roundID)
	if err != nil {
		return Completion{}, domain.NewStoreError("list ratings", err)
	}

	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return EvaluateCompletion(ids, dishes, ratings), nil
}

// Progress returns the per-player voting progress for a round, for UI
// consumption. The finalization-vote tally is a secondary display value:
// if it cannot be read the progress still renders, with the tally zeroed
// and the failure logged.
func (s *CompletionService) Progress(ctx context.Context, roundID int64) (*ports.RoundProgress, error) {
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	dishes, err := s.repo.ListDishesByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.repo.ListRatingsByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(players))
	names := make(map[uuid.UUID]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
		names[p.ID] = p.DisplayName
	}
	eval := EvaluateCompletion(ids, dishes, ratings)

	votes, err := s.repo.CountFinalizationVotes(ctx, roundID)
	if err != nil {
		s.log.Warn("progress: finalization vote tally unavailable",
			"round_id", roundID, "error", err)
		votes = 0
	}

	progress := &ports.RoundProgress{
		RoundID:           round.ID,
		TotalDishes:       len(dishes),
		FullyComplete:     eval.FullyComplete,
		VoterCount:        eval.VoterCount,
		FinalizationVotes: votes,
		Quorum:            s.quorum,
		Players:           make([]ports.PlayerProgress, 0, len(players)),
	}
	for _, p := range players {
		pc := eval.PerPlayer[p.ID]
		progress.Players = append(progress.Players, ports.PlayerProgress{
			PlayerID:    p.ID,
			DisplayName: names[p.ID],
			HasDish:     pc.HasDish,
			Required:    pc.Required,
			Completed:   pc.Completed,
			Remaining:   pc.Remaining(),
			Complete:    pc.Complete(),
		})
	}
	sort.Slice(progress.Players, func(i, j int) bool {
		return progress.Players[i].DisplayName < progress.Players[j].DisplayName
	})
	return progress, nil
}
