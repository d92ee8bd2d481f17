package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookoff/src/core/ports"
)

func TestRecomputeStatsReplaysFinalizedRounds(t *testing.T) {
	env := newTestEnv(t, 100)
	ctx := context.Background()

	alice := env.addPlayer(t, "alice")
	bob := env.addPlayer(t, "bob")
	roundID := env.openRound(t, "Round 1")

	soup := env.addDish(t, roundID, alice, "Soup")
	stew := env.addDish(t, roundID, bob, "Stew")

	mustRate(t, env, alice, stew, 9)
	_, finalized, err := env.submission.SubmitRating(ctx, bob, soup, 8)
	require.NoError(t, err)
	require.True(t, finalized)

	// Corrupt the stats, then recompute from the finalized round.
	require.NoError(t, env.repo.ApplyStatsDelta(ctx, alice, ports.StatsDelta{Points: 50, Games: 3, Wins: 2}))

	replayed, err := env.admin.RecomputeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	aliceStats, err := env.repo.GetPlayerStats(ctx, alice)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, aliceStats.TotalPoints, 1e-9)
	assert.Equal(t, 1, aliceStats.GamesPlayed)
	assert.Equal(t, 0, aliceStats.Wins)

	bobStats, err := env.repo.GetPlayerStats(ctx, bob)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, bobStats.TotalPoints, 1e-9)
	assert.Equal(t, 1, bobStats.Wins)
}

func TestResetStatsFallsBackToPerRow(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx := context.Background()

	alice := env.addPlayer(t, "alice")
	require.NoError(t, env.repo.ApplyStatsDelta(ctx, alice, ports.StatsDelta{Points: 12, Games: 2, Wins: 1}))

	env.repo.failResetAll = true

	require.NoError(t, env.admin.ResetStats(ctx))

	stats, err := env.repo.GetPlayerStats(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPoints)
	assert.Zero(t, stats.GamesPlayed)
	assert.Zero(t, stats.Wins)
}

func TestResetContestKeepsPlayers(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx := context.Background()

	alice := env.addPlayer(t, "alice")
	roundID := env.openRound(t, "Round 1")
	env.addDish(t, roundID, alice, "Soup")

	require.NoError(t, env.admin.ResetContest(ctx))

	rounds, err := env.rounds.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rounds)

	player, err := env.repo.GetPlayerByID(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", player.DisplayName)

	stats, err := env.repo.GetPlayerStats(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, stats.GamesPlayed)
}
