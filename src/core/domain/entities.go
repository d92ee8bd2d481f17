package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoundStatus represents the lifecycle of a contest round.
type RoundStatus string

const (
	RoundUpcoming   RoundStatus = "upcoming"
	RoundVotingOpen RoundStatus = "voting_open"
	RoundFinalized  RoundStatus = "finalized"
)

// Player represents a registered contestant. Identity is opaque to the
// core: callers authenticate elsewhere and present a player id.
type Player struct {
	ID          uuid.UUID
	DisplayName string
	CreatedAt   time.Time
}

// Round represents one submit-then-vote cycle of the contest.
// At most one round may be voting_open at a time; the transition
// voting_open -> finalized is one-way.
type Round struct {
	ID          int64
	Name        string
	Status      RoundStatus
	CreatedAt   time.Time
	FinalizedAt *time.Time
}

// Open reports whether the round currently accepts dishes and ratings.
func (r *Round) Open() bool {
	return r.Status == RoundVotingOpen
}

// Dish represents a single player's submission within a round.
// One dish per (round, owner).
type Dish struct {
	ID          int64
	RoundID     int64
	OwnerID     uuid.UUID
	Name        string
	ImageRef    string
	SubmittedAt time.Time
}

// Rating represents one voter's score for one dish. Unique per
// (dish, voter); a voter never rates their own dish; immutable once written.
type Rating struct {
	ID      int64
	DishID  int64
	VoterID uuid.UUID
	Score   int
}

// FinalizationVote is a manual "close the round" ballot, independent of
// dish ratings. Unique per (round, voter).
type FinalizationVote struct {
	RoundID int64
	VoterID uuid.UUID
	CastAt  time.Time
}

// PlayerStats holds cumulative per-player aggregates, mutated only at
// round finalization (or by the administrative recompute).
//
// OverallAverage and ReceivedAverage are two distinct statistics:
// the first is TotalPoints/GamesPlayed, the second is the mean of every
// rating the player's dishes ever received.
type PlayerStats struct {
	PlayerID        uuid.UUID
	TotalPoints     float64
	GamesPlayed     int
	Wins            int
	OverallAverage  float64
	ReceivedAverage float64
}

// ValidScore reports whether a rating score is within the accepted range.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
