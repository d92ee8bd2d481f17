package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Players
CREATE TABLE IF NOT EXISTS players (
    player_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    display_name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- Rounds
CREATE TABLE IF NOT EXISTS rounds (
    round_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'upcoming'
        CHECK (status IN ('upcoming', 'voting_open', 'finalized')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    finalized_at TIMESTAMPTZ
);

-- At most one round may be voting_open system-wide.
CREATE UNIQUE INDEX IF NOT EXISTS idx_rounds_single_open
    ON rounds (status) WHERE status = 'voting_open';

-- Dishes: one per (round, owner)
CREATE TABLE IF NOT EXISTS dishes (
    dish_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    round_id BIGINT NOT NULL REFERENCES rounds(round_id),
    owner_id UUID NOT NULL REFERENCES players(player_id),
    name TEXT NOT NULL,
    image_ref TEXT NOT NULL DEFAULT '',
    submitted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (round_id, owner_id)
);

CREATE INDEX IF NOT EXISTS idx_dishes_round_id ON dishes(round_id);

-- Ratings: one per (dish, voter), score bounded, immutable
CREATE TABLE IF NOT EXISTS ratings (
    rating_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    dish_id BIGINT NOT NULL REFERENCES dishes(dish_id),
    voter_id UUID NOT NULL REFERENCES players(player_id),
    score INT NOT NULL CHECK (score BETWEEN 1 AND 10),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (dish_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_ratings_dish_id ON ratings(dish_id);
CREATE INDEX IF NOT EXISTS idx_ratings_voter_id ON ratings(voter_id);

-- Manual finalization ballots: one per (round, voter)
CREATE TABLE IF NOT EXISTS finalization_votes (
    round_id BIGINT NOT NULL REFERENCES rounds(round_id),
    voter_id UUID NOT NULL REFERENCES players(player_id),
    cast_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (round_id, voter_id)
);

-- Cumulative per-player statistics, mutated only at finalization
CREATE TABLE IF NOT EXISTS player_stats (
    player_id UUID PRIMARY KEY REFERENCES players(player_id),
    total_points DOUBLE PRECISION NOT NULL DEFAULT 0,
    games_played INT NOT NULL DEFAULT 0,
    wins INT NOT NULL DEFAULT 0,
    overall_average DOUBLE PRECISION NOT NULL DEFAULT 0,
    received_average DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
