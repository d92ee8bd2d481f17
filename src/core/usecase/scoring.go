package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"cookoff/src/core/domain"
	"cookoff/src/core/ports"
)

// DishResult is the scored outcome of one dish.
type DishResult struct {
	Dish         domain.Dish
	Mean         float64
	ValidRatings int
}

// Rated reports whether at least one valid rating counted for the dish.
func (r DishResult) Rated() bool {
	return r.ValidRatings > 0
}

// RoundOutcome is the pure result of converting a round's ratings into
// per-dish means and winners, before anything is persisted.
type RoundOutcome struct {
	Results  []DishResult
	BestMean float64
	// Winners holds the owners of every dish tying the round's maximum
	// mean. Ties are a valid outcome; there is no tie-break.
	Winners []uuid.UUID
	// ValidVoters completed their full required rating set; only their
	// ratings count toward dish means.
	ValidVoters map[uuid.UUID]bool
	// Voters is every player with at least one non-self rating in the
	// round, valid or not. Used for participation credit.
	Voters []uuid.UUID
}

// ComputeRoundOutcome derives dish means and winners from raw ratings.
//
// A voter's ratings count only if the voter rated every dish they were
// required to rate (all dishes minus their own). Partial voters are
// excluded entirely so incomplete ballots cannot skew averages. Within
// the valid set, a dish's mean is the plain arithmetic mean; the round's
// winners are the owners of the dishes tying the maximum mean.
func ComputeRoundOutcome(dishes []domain.Dish, ratings []domain.Rating) RoundOutcome {
	owners := make(map[uuid.UUID]bool, len(dishes))
	dishOwner := make(map[int64]uuid.UUID, len(dishes))
	for _, d := range dishes {
		owners[d.OwnerID] = true
		dishOwner[d.ID] = d.OwnerID
	}

	// Count non-self ratings per voter, then keep voters who completed
	// their full required set. Recomputed here rather than trusting the
	// completion check so late-arriving votes still count.
	counted := make(map[uuid.UUID]int)
	for _, r := range ratings {
		owner, ok := dishOwner[r.DishID]
		if !ok || owner == r.VoterID {
			continue
		}
		counted[r.VoterID]++
	}

	valid := make(map[uuid.UUID]bool, len(counted))
	voters := make([]uuid.UUID, 0, len(counted))
	for voter, n := range counted {
		voters = append(voters, voter)
		required := len(dishes)
		if owners[voter] {
			required = len(dishes) - 1
		}
		if required > 0 && n >= required {
			valid[voter] = true
		}
	}
	sortUUIDs(voters)

	out := RoundOutcome{
		Results:     make([]DishResult, 0, len(dishes)),
		ValidVoters: valid,
		Voters:      voters,
	}

	for _, d := range dishes {
		var sum, count int
		for _, r := range ratings {
			if r.DishID != d.ID || r.VoterID == d.OwnerID || !valid[r.VoterID] {
				continue
			}
			sum += r.Score
			count++
		}
		res := DishResult{Dish: d, ValidRatings: count}
		if count > 0 {
			res.Mean = float64(sum) / float64(count)
			switch {
			case res.Mean > out.BestMean:
				out.BestMean = res.Mean
				out.Winners = []uuid.UUID{d.OwnerID}
			case res.Mean == out.BestMean:
				out.Winners = append(out.Winners, d.OwnerID)
			}
		}
		out.Results = append(out.Results, res)
	}
	return out
}

// ScoringService converts a finalized round's ratings into cumulative
// player statistics. Invoked once per finalization event; the round state
// machine's compare-and-set transition guarantees a single invocation per
// round, so the sweep itself does not need a lock.
type ScoringService struct {
	repo ports.ContestRepository
	log  *slog.Logger
}

func NewScoringService(repo ports.ContestRepository, log *slog.Logger) *ScoringService {
	return &ScoringService{repo: repo, log: log}
}

// ScoreRound applies a round's outcome to player statistics.
//
// The sweep is best-effort: a failure updating one player is logged and
// the remaining players are still processed (the administrative recompute
// repairs stragglers). Dish owners earn their dish's unrounded mean as
// points plus a game; owners of dishes with no valid ratings earn the
// game only. Winners earn a win. Players who voted without submitting a
// dish earn a game as participation credit.
func (s *ScoringService) ScoreRound(ctx context.Context, roundID int64) error {
	dishes, err := s.repo.ListDishesByRound(ctx, roundID)
	if err != nil {
		return domain.NewStoreError("list dishes", err)
	}
	ratings, err := s.repo.ListRatingsByRound(ctx, roundID)
	if err != nil {
		return domain.NewStoreError("list ratings", err)
	}

	outcome := ComputeRoundOutcome(dishes, ratings)

	wins := make(map[uuid.UUID]int, len(outcome.Winners))
	for _, w := range outcome.Winners {
		wins[w]++
	}

	deltas := make(map[uuid.UUID]ports.StatsDelta, len(dishes)+len(outcome.Voters))
	for _, res := range outcome.Results {
		d := ports.StatsDelta{Games: 1, Wins: wins[res.Dish.OwnerID]}
		if res.Rated() {
			d.Points = res.Mean
		}
		deltas[res.Dish.OwnerID] = d
	}
	for _, voter := range outcome.Voters {
		if _, ownsDish := deltas[voter]; !ownsDish {
			deltas[voter] = ports.StatsDelta{Games: 1}
		}
	}

	var failed int
	for _, playerID := range sortedKeys(deltas) {
		if err := s.repo.ApplyStatsDelta(ctx, playerID, deltas[playerID]); err != nil {
			failed++
			s.log.Error("partial scoring failure: player stats not updated",
				"round_id", roundID, "player_id", playerID, "error", err)
		}
	}

	for _, d := range dishes {
		if err := s.repo.RefreshReceivedAverage(ctx, d.OwnerID); err != nil {
			s.log.Warn("received-average refresh failed",
				"round_id", roundID, "player_id", d.OwnerID, "error", err)
		}
	}

	s.log.Info("round scored",
		"round_id", roundID,
		"dishes", len(dishes),
		"valid_voters", len(outcome.ValidVoters),
		"winners", len(outcome.Winners),
		"best_mean", outcome.BestMean,
		"failed_updates", failed,
	)
	return nil
}

func sortedKeys(m map[uuid.UUID]ports.StatsDelta) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortUUIDs(keys)
	return keys
}

func sortUUIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}
