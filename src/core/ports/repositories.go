// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"github.com/google/uuid"

	"cookoff/src/core/domain"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// StatsDelta is a monotonic increment applied to a player's cumulative
// statistics at finalization. Points may be fractional; nothing decreases.
type StatsDelta struct {
	Points float64
	Games  int
	Wins   int
}

// PlayerProgress reports how far one player is through their required
// rating set for a round. Read-only UI artifact of the completion check.
type PlayerProgress struct {
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	HasDish     bool      `json:"has_dish"`
	Required    int       `json:"required"`
	Completed   int       `json:"completed"`
	Remaining   int       `json:"remaining"`
	Complete    bool      `json:"complete"`
}

// RoundProgress aggregates the completion state of an open round.
type RoundProgress struct {
	RoundID           int64            `json:"round_id"`
	TotalDishes       int              `json:"total_dishes"`
	FullyComplete     bool             `json:"fully_complete"`
	VoterCount        int              `json:"voter_count"`
	FinalizationVotes int              `json:"finalization_votes"`
	Quorum            int              `json:"quorum"`
	Players           []PlayerProgress `json:"players"`
}

// LeaderboardEntry pairs a player with their cumulative statistics.
type LeaderboardEntry struct {
	Player domain.Player
	Stats  domain.PlayerStats
}

// ContestRepository is a composite repository covering all contest operations.
type ContestRepository interface {
	Repository

	// Players
	RegisterPlayer(ctx context.Context, displayName string) (*domain.Player, error)
	GetPlayerByID(ctx context.Context, playerID uuid.UUID) (*domain.Player, error)
	ListPlayers(ctx context.Context) ([]domain.Player, error)

	// Rounds
	CreateRound(ctx context.Context, name string) (*domain.Round, error)
	GetRoundByID(ctx context.Context, roundID int64) (*domain.Round, error)
	GetOpenRound(ctx context.Context) (*domain.Round, error)
	GetLatestRound(ctx context.Context) (*domain.Round, error)
	ListRounds(ctx context.Context) ([]domain.Round, error)
	ListFinalizedRounds(ctx context.Context) ([]domain.Round, error)
	// OpenRound moves an upcoming round to voting_open. Fails with a
	// conflict while any other round is open.
	OpenRound(ctx context.Context, roundID int64) (*domain.Round, error)
	// FinalizeRound performs the one-way voting_open -> finalized
	// transition as a compare-and-set. It reports whether this call won
	// the transition; false means the round was already finalized and the
	// caller must treat the operation as a no-op.
	FinalizeRound(ctx context.Context, roundID int64) (bool, error)

	// Dishes
	CreateDish(ctx context.Context, roundID int64, ownerID uuid.UUID, name, imageRef string) (*domain.Dish, error)
	GetDishByID(ctx context.Context, dishID int64) (*domain.Dish, error)
	ListDishesByRound(ctx context.Context, roundID int64) ([]domain.Dish, error)

	// Ratings
	CreateRating(ctx context.Context, dishID int64, voterID uuid.UUID, score int) (*domain.Rating, error)
	ListRatingsByRound(ctx context.Context, roundID int64) ([]domain.Rating, error)

	// Finalization votes
	CreateFinalizationVote(ctx context.Context, roundID int64, voterID uuid.UUID) error
	CountFinalizationVotes(ctx context.Context, roundID int64) (int, error)
	ListFinalizationVoters(ctx context.Context, roundID int64) ([]uuid.UUID, error)

	// Player statistics. GetPlayerStats returns a zero-valued row when the
	// player has no statistics yet.
	GetPlayerStats(ctx context.Context, playerID uuid.UUID) (*domain.PlayerStats, error)
	// ApplyStatsDelta upserts the player's row and increments it in place,
	// keeping overall_average consistent. Increments are safe against
	// concurrent finalizations of different rounds.
	ApplyStatsDelta(ctx context.Context, playerID uuid.UUID, delta StatsDelta) error
	// RefreshReceivedAverage recomputes the mean of all ratings the
	// player's dishes ever received and stores it.
	RefreshReceivedAverage(ctx context.Context, playerID uuid.UUID) error
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)

	// Administrative stats maintenance
	ResetAllStats(ctx context.Context) error
	ResetPlayerStats(ctx context.Context, playerID uuid.UUID) error

	// ResetContest clears all gameplay data (rounds, dishes, ratings,
	// finalization votes, statistics) while keeping registered players.
	ResetContest(ctx context.Context) error
}
