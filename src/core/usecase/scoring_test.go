package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookoff/src/core/domain"
)

func TestComputeRoundOutcomeMeansAndWinner(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	dishes := []domain.Dish{
		{ID: 1, RoundID: 1, OwnerID: a, Name: "Soup"},
		{ID: 2, RoundID: 1, OwnerID: b, Name: "Stew"},
	}
	ratings := []domain.Rating{
		{DishID: 2, VoterID: a, Score: 9},
		{DishID: 1, VoterID: b, Score: 8},
		{DishID: 1, VoterID: c, Score: 6},
		{DishID: 2, VoterID: c, Score: 7},
	}

	out := ComputeRoundOutcome(dishes, ratings)

	require.Len(t, out.Results, 2)
	assert.InDelta(t, 7.0, out.Results[0].Mean, 1e-9) // Soup: (8+6)/2
	assert.InDelta(t, 8.0, out.Results[1].Mean, 1e-9) // Stew: (9+7)/2
	assert.InDelta(t, 8.0, out.BestMean, 1e-9)
	assert.Equal(t, []uuid.UUID{b}, out.Winners)
	assert.Len(t, out.ValidVoters, 3)
	assert.Len(t, out.Voters, 3)
}

func TestComputeRoundOutcomeTiedWinners(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	dishes := []domain.Dish{
		{ID: 1, RoundID: 1, OwnerID: a},
		{ID: 2, RoundID: 1, OwnerID: b},
	}
	ratings := []domain.Rating{
		{DishID: 2, VoterID: a, Score: 7},
		{DishID: 1, VoterID: b, Score: 7},
		{DishID: 1, VoterID: c, Score: 7},
		{DishID: 2, VoterID: c, Score: 7},
	}

	out := ComputeRoundOutcome(dishes, ratings)

	assert.InDelta(t, 7.0, out.BestMean, 1e-9)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, out.Winners)
}

func TestComputeRoundOutcomeExcludesPartialVoters(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	dishes := []domain.Dish{
		{ID: 1, RoundID: 1, OwnerID: a},
		{ID: 2, RoundID: 1, OwnerID: b},
	}
	// C rated only one of the two required dishes: every rating from C is
	// discarded, including the one they did cast.
	ratings := []domain.Rating{
		{DishID: 2, VoterID: a, Score: 9},
		{DishID: 1, VoterID: b, Score: 8},
		{DishID: 1, VoterID: c, Score: 1},
	}

	out := ComputeRoundOutcome(dishes, ratings)

	assert.False(t, out.ValidVoters[c])
	assert.InDelta(t, 8.0, out.Results[0].Mean, 1e-9) // C's 1 for Soup excluded
	assert.Equal(t, 1, out.Results[0].ValidRatings)
	// C still shows up as a voter for participation credit.
	assert.Contains(t, out.Voters, c)
}

func TestComputeRoundOutcomeUnratedDish(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	dishes := []domain.Dish{
		{ID: 1, RoundID: 1, OwnerID: a},
		{ID: 2, RoundID: 1, OwnerID: b},
	}
	ratings := []domain.Rating{
		{DishID: 1, VoterID: b, Score: 8},
	}

	out := ComputeRoundOutcome(dishes, ratings)

	require.Len(t, out.Results, 2)
	assert.True(t, out.Results[0].Rated())
	assert.False(t, out.Results[1].Rated())
	assert.Zero(t, out.Results[1].Mean)
}

func TestScoreRoundAppliesStats(t *testing.T) {
	env := newTestEnv(t, 100)
	ctx := context.Background()

	alice := env.addPlayer(t, "alice")
	bob := env.addPlayer(t, "bob")
	carol := env.addPlayer(t, "carol")
	roundID := env.openRound(t, "Round 1")

	soup := env.addDish(t, roundID, alice, "Soup")
	stew := env.addDish(t, roundID, bob, "Stew")

	mustRate(t, env, alice, stew, 9)
	mustRate(t, env, bob, soup, 8)
	mustRate(t, env, carol, soup, 6)

	// Carol's final rating completes every required set and finalizes.
	_, finalized, err := env.submission.SubmitRating(ctx, carol, stew, 7)
	require.NoError(t, err)
	require.True(t, finalized)

	aliceStats, err := env.repo.GetPlayerStats(ctx, alice)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, aliceStats.TotalPoints, 1e-9)
	assert.Equal(t, 1, aliceStats.GamesPlayed)
	assert.Equal(t, 0, aliceStats.Wins)
	assert.InDelta(t, 7.0, aliceStats.OverallAverage, 1e-9)
	assert.InDelta(t, 7.0, aliceStats.ReceivedAverage, 1e-9)

	bobStats, err := env.repo.GetPlayerStats(ctx, bob)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, bobStats.TotalPoints, 1e-9)
	assert.Equal(t, 1, bobStats.Wins)
	assert.InDelta(t, 8.0, bobStats.ReceivedAverage, 1e-9)

	// Carol voted without a dish: participation credit only.
	carolStats, err := env.repo.GetPlayerStats(ctx, carol)
	require.NoError(t, err)
	assert.Zero(t, carolStats.TotalPoints)
	assert.Equal(t, 1, carolStats.GamesPlayed)
	assert.Equal(t, 0, carolStats.Wins)
}

func TestScoreRoundUnratedDishStillCountsGame(t *testing.T) {
	env := newTestEnv(t, 100)
	ctx := context.Background()

	alice := env.addPlayer(t, "alice")
	bob := env.addPlayer(t, "bob")
	roundID := env.openRound(t, "Round 1")

	soup := env.addDish(t, roundID, alice, "Soup")
	env.addDish(t, roundID, bob, "Stew")

	mustRate(t, env, bob, soup, 8)

	require.NoError(t, env.scoring.ScoreRound(ctx, roundID))

	bobStats, err := env.repo.GetPlayerStats(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, bobStats.TotalPoints)
	assert.Equal(t, 1, bobStats.GamesPlayed)
}

func TestScoreRoundContinuesPastPlayerFailure(t *testing.T) {
	env := newTestEnv(t, 100)
	ctx := context.Background()

	alice := env.addPlayer(t, "alice")
	bob := env.addPlayer(t, "bob")
	carol := env.addPlayer(t, "carol")
	roundID := env.openRound(t, "Round 1")

	soup := env.addDish(t, roundID, alice, "Soup")
	stew := env.addDish(t, roundID, bob, "Stew")

	// Seed ratings directly so scoring runs exactly once, below.
	seedRating(t, env, alice, stew, 9)
	seedRating(t, env, bob, soup, 8)
	seedRating(t, env, carol, soup, 6)
	seedRating(t, env, carol, stew, 7)

	env.repo.failDeltaFor[bob] = true

	// Best-effort sweep: Bob's update fails, everyone else still lands.
	require.NoError(t, env.scoring.ScoreRound(ctx, roundID))

	aliceStats, err := env.repo.GetPlayerStats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, aliceStats.GamesPlayed)

	bobStats, err := env.repo.GetPlayerStats(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, bobStats.GamesPlayed)

	carolStats, err := env.repo.GetPlayerStats(ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, 1, carolStats.GamesPlayed)
}

func mustRate(t *testing.T, env *testEnv, voter uuid.UUID, dishID int64, score int) {
	t.Helper()
	if _, _, err := env.submission.SubmitRating(context.Background(), voter, dishID, score); err != nil {
		t.Fatalf("rate dish %d: %v", dishID, err)
	}
}

// seedRating writes a rating straight to the store, bypassing the
// finalization check that SubmitRating would run.
func seedRating(t *testing.T, env *testEnv, voter uuid.UUID, dishID int64, score int) {
	t.Helper()
	if _, err := env.repo.CreateRating(context.Background(), dishID, voter, score); err != nil {
		t.Fatalf("seed rating for dish %d: %v", dishID, err)
	}
}
