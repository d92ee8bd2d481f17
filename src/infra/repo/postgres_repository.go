package repo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cookoff/src/core/domain"
	"cookoff/src/core/ports"
	"cookoff/src/infra/db"
)

// PostgresRepository implements ContestRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool: pg.Pool,
		log:  log,
	}
}

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// Players

func (r *PostgresRepository) RegisterPlayer(ctx context.Context, displayName string) (*domain.Player, error) {
	const q = `
		INSERT INTO players (display_name)
		VALUES ($1)
		RETURNING player_id, display_name, created_at
	`
	var p domain.Player
	err := r.pool.QueryRow(ctx, q, displayName).Scan(&p.ID, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("display name already taken")
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) GetPlayerByID(ctx context.Context, playerID uuid.UUID) (*domain.Player, error) {
	const q = `
		SELECT player_id, display_name, created_at
		FROM players
		WHERE player_id = $1
	`
	var p domain.Player
	if err := r.pool.QueryRow(ctx, q, playerID).Scan(&p.ID, &p.DisplayName, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("player")
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	const q = `
		SELECT player_id, display_name, created_at
		FROM players
		ORDER BY display_name ASC
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Rounds

const roundColumns = `round_id, name, status, created_at, finalized_at`

func scanRound(row pgx.Row) (*domain.Round, error) {
	var rd domain.Round
	if err := row.Scan(&rd.ID, &rd.Name, &rd.Status, &rd.CreatedAt, &rd.FinalizedAt); err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *PostgresRepository) CreateRound(ctx context.Context, name string) (*domain.Round, error) {
	const q = `
		INSERT INTO rounds (name)
		VALUES ($1)
		RETURNING ` + roundColumns
	return scanRound(r.pool.QueryRow(ctx, q, name))
}

func (r *PostgresRepository) GetRoundByID(ctx context.Context, roundID int64) (*domain.Round, error) {
	const q = `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE round_id = $1
	`
	rd, err := scanRound(r.pool.QueryRow(ctx, q, roundID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("round")
		}
		return nil, err
	}
	return rd, nil
}

func (r *PostgresRepository) GetOpenRound(ctx context.Context) (*domain.Round, error) {
	const q = `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE status = 'voting_open'
	`
	rd, err := scanRound(r.pool.QueryRow(ctx, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rd, nil
}

func (r *PostgresRepository) GetLatestRound(ctx context.Context) (*domain.Round, error) {
	const q = `
		SELECT ` + roundColumns + `
		FROM rounds
		ORDER BY round_id DESC
		LIMIT 1
	`
	rd, err := scanRound(r.pool.QueryRow(ctx, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rd, nil
}

func (r *PostgresRepository) ListRounds(ctx context.Context) ([]domain.Round, error) {
	const q = `
		SELECT ` + roundColumns + `
		FROM rounds
		ORDER BY round_id DESC
	`
	return r.queryRounds(ctx, q)
}

func (r *PostgresRepository) ListFinalizedRounds(ctx context.Context) ([]domain.Round, error) {
	const q = `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE status = 'finalized'
		ORDER BY round_id ASC
	`
	return r.queryRounds(ctx, q)
}

func (r *PostgresRepository) queryRounds(ctx context.Context, q string) ([]domain.Round, error) {
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []domain.Round
	for rows.Next() {
		var rd domain.Round
		if err := rows.Scan(&rd.ID, &rd.Name, &rd.Status, &rd.CreatedAt, &rd.FinalizedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}

func (r *PostgresRepository) OpenRound(ctx context.Context, roundID int64) (*domain.Round, error) {
	const q = `
		UPDATE rounds
		SET status = 'voting_open'
		WHERE round_id = $1 AND status = 'upcoming'
		RETURNING ` + roundColumns
	rd, err := scanRound(r.pool.QueryRow(ctx, q, roundID))
	if err != nil {
		if isUniqueViolation(err) {
			// Partial unique index on voting_open: some other round is open.
			return nil, domain.NewConflictError("another round is already open for voting")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetRoundByID(ctx, roundID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.NewConflictError("round is not in upcoming state")
		}
		return nil, err
	}
	return rd, nil
}

func (r *PostgresRepository) FinalizeRound(ctx context.Context, roundID int64) (bool, error) {
	const q = `
		UPDATE rounds
		SET status = 'finalized', finalized_at = now()
		WHERE round_id = $1 AND status = 'voting_open'
	`
	res, err := r.pool.Exec(ctx, q, roundID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

// Dishes

func (r *PostgresRepository) CreateDish(ctx context.Context, roundID int64, ownerID uuid.UUID, name, imageRef string) (*domain.Dish, error) {
	const q = `
		INSERT INTO dishes (round_id, owner_id, name, image_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING dish_id, round_id, owner_id, name, image_ref, submitted_at
	`
	var d domain.Dish
	err := r.pool.QueryRow(ctx, q, roundID, ownerID, name, imageRef).Scan(
		&d.ID, &d.RoundID, &d.OwnerID, &d.Name, &d.ImageRef, &d.SubmittedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewDuplicateSubmissionError()
		}
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) GetDishByID(ctx context.Context, dishID int64) (*domain.Dish, error) {
	const q = `
		SELECT dish_id, round_id, owner_id, name, image_ref, submitted_at
		FROM dishes
		WHERE dish_id = $1
	`
	var d domain.Dish
	if err := r.pool.QueryRow(ctx, q, dishID).Scan(
		&d.ID, &d.RoundID, &d.OwnerID, &d.Name, &d.ImageRef, &d.SubmittedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("dish")
		}
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) ListDishesByRound(ctx context.Context, roundID int64) ([]domain.Dish, error) {
	const q = `
		SELECT dish_id, round_id, owner_id, name, image_ref, submitted_at
		FROM dishes
		WHERE round_id = $1
		ORDER BY dish_id ASC
	`
	rows, err := r.pool.Query(ctx, q, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []domain.Dish
	for rows.Next() {
		var d domain.Dish
		if err := rows.Scan(&d.ID, &d.RoundID, &d.OwnerID, &d.Name, &d.ImageRef, &d.SubmittedAt); err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

// Ratings

func (r *PostgresRepository) CreateRating(ctx context.Context, dishID int64, voterID uuid.UUID, score int) (*domain.Rating, error) {
	const q = `
		INSERT INTO ratings (dish_id, voter_id, score)
		VALUES ($1, $2, $3)
		RETURNING rating_id, dish_id, voter_id, score
	`
	var rt domain.Rating
	err := r.pool.QueryRow(ctx, q, dishID, voterID, score).Scan(
		&rt.ID, &rt.DishID, &rt.VoterID, &rt.Score,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewDuplicateRatingError()
		}
		return nil, err
	}
	return &rt, nil
}

func (r *PostgresRepository) ListRatingsByRound(ctx context.Context, roundID int64) ([]domain.Rating, error) {
	const q = `
		SELECT rt.rating_id, rt.dish_id, rt.voter_id, rt.score
		FROM ratings rt
		JOIN dishes d ON d.dish_id = rt.dish_id
		WHERE d.round_id = $1
		ORDER BY rt.rating_id ASC
	`
	rows, err := r.pool.Query(ctx, q, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.ID, &rt.DishID, &rt.VoterID, &rt.Score); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// Finalization votes

func (r *PostgresRepository) CreateFinalizationVote(ctx context.Context, roundID int64, voterID uuid.UUID) error {
	const q = `
		INSERT INTO finalization_votes (round_id, voter_id)
		VALUES ($1, $2)
	`
	if _, err := r.pool.Exec(ctx, q, roundID, voterID); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("already voted to finalize this round")
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) CountFinalizationVotes(ctx context.Context, roundID int64) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM finalization_votes
		WHERE round_id = $1
	`
	var count int
	if err := r.pool.QueryRow(ctx, q, roundID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) ListFinalizationVoters(ctx context.Context, roundID int64) ([]uuid.UUID, error) {
	const q = `
		SELECT voter_id
		FROM finalization_votes
		WHERE round_id = $1
		ORDER BY cast_at ASC
	`
	rows, err := r.pool.Query(ctx, q, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var voters []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		voters = append(voters, id)
	}
	return voters, rows.Err()
}

// Player statistics

func (r *PostgresRepository) GetPlayerStats(ctx context.Context, playerID uuid.UUID) (*domain.PlayerStats, error) {
	const q = `
		SELECT player_id, total_points, games_played, wins, overall_average, received_average
		FROM player_stats
		WHERE player_id = $1
	`
	var s domain.PlayerStats
	if err := r.pool.QueryRow(ctx, q, playerID).Scan(
		&s.PlayerID, &s.TotalPoints, &s.GamesPlayed, &s.Wins, &s.OverallAverage, &s.ReceivedAverage,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.PlayerStats{PlayerID: playerID}, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) ApplyStatsDelta(ctx context.Context, playerID uuid.UUID, delta ports.StatsDelta) error {
	// Increment in place so concurrent finalizations of different rounds
	// never erase each other's updates.
	const q = `
		INSERT INTO player_stats (player_id, total_points, games_played, wins, overall_average)
		VALUES (
			$1, $2, $3, $4,
			CASE WHEN $3::int > 0 THEN $2::float8 / $3::float8 ELSE 0 END
		)
		ON CONFLICT (player_id) DO UPDATE SET
			total_points = player_stats.total_points + EXCLUDED.total_points,
			games_played = player_stats.games_played + EXCLUDED.games_played,
			wins = player_stats.wins + EXCLUDED.wins,
			overall_average = CASE
				WHEN player_stats.games_played + EXCLUDED.games_played > 0
				THEN (player_stats.total_points + EXCLUDED.total_points)
				     / (player_stats.games_played + EXCLUDED.games_played)
				ELSE 0
			END,
			updated_at = now()
	`
	_, err := r.pool.Exec(ctx, q, playerID, delta.Points, delta.Games, delta.Wins)
	return err
}

func (r *PostgresRepository) RefreshReceivedAverage(ctx context.Context, playerID uuid.UUID) error {
	const q = `
		INSERT INTO player_stats (player_id, received_average)
		VALUES (
			$1,
			COALESCE((
				SELECT AVG(rt.score)::float8
				FROM ratings rt
				JOIN dishes d ON d.dish_id = rt.dish_id
				WHERE d.owner_id = $1
			), 0)
		)
		ON CONFLICT (player_id) DO UPDATE SET
			received_average = EXCLUDED.received_average,
			updated_at = now()
	`
	_, err := r.pool.Exec(ctx, q, playerID)
	return err
}

func (r *PostgresRepository) Leaderboard(ctx context.Context) ([]ports.LeaderboardEntry, error) {
	const q = `
		SELECT p.player_id, p.display_name, p.created_at,
		       COALESCE(s.total_points, 0),
		       COALESCE(s.games_played, 0),
		       COALESCE(s.wins, 0),
		       COALESCE(s.overall_average, 0),
		       COALESCE(s.received_average, 0)
		FROM players p
		LEFT JOIN player_stats s ON s.player_id = p.player_id
		ORDER BY COALESCE(s.total_points, 0) DESC, COALESCE(s.wins, 0) DESC, p.display_name ASC
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ports.LeaderboardEntry
	for rows.Next() {
		var e ports.LeaderboardEntry
		if err := rows.Scan(
			&e.Player.ID, &e.Player.DisplayName, &e.Player.CreatedAt,
			&e.Stats.TotalPoints, &e.Stats.GamesPlayed, &e.Stats.Wins,
			&e.Stats.OverallAverage, &e.Stats.ReceivedAverage,
		); err != nil {
			return nil, err
		}
		e.Stats.PlayerID = e.Player.ID
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Administrative stats maintenance

func (r *PostgresRepository) ResetAllStats(ctx context.Context) error {
	const q = `
		UPDATE player_stats
		SET total_points = 0,
		    games_played = 0,
		    wins = 0,
		    overall_average = 0,
		    received_average = 0,
		    updated_at = now()
	`
	_, err := r.pool.Exec(ctx, q)
	return err
}

func (r *PostgresRepository) ResetPlayerStats(ctx context.Context, playerID uuid.UUID) error {
	const q = `
		UPDATE player_stats
		SET total_points = 0,
		    games_played = 0,
		    wins = 0,
		    overall_average = 0,
		    received_average = 0,
		    updated_at = now()
		WHERE player_id = $1
	`
	_, err := r.pool.Exec(ctx, q, playerID)
	return err
}

func (r *PostgresRepository) ResetContest(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Clear gameplay data but keep registered players.
	const truncateQ = `
		TRUNCATE TABLE
			finalization_votes,
			ratings,
			dishes,
			rounds
		RESTART IDENTITY CASCADE
	`
	if _, err := tx.Exec(ctx, truncateQ); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM player_stats`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
