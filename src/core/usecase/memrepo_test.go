package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"cookoff/src/core/domain"
	"cookoff/src/core/ports"
)

// memRepo is an in-memory ContestRepository for exercising the use cases
// without a database. Failure flags let tests inject transient store
// errors on specific operations.
type memRepo struct {
	mu sync.Mutex

	players map[uuid.UUID]domain.Player
	rounds  map[int64]*domain.Round
	dishes  map[int64]domain.Dish
	ratings []domain.Rating
	votes   map[int64][]uuid.UUID
	stats   map[uuid.UUID]domain.PlayerStats

	nextRound  int64
	nextDish   int64
	nextRating int64

	failListRatings bool
	failCountVotes  bool
	failResetAll    bool
	failDeltaFor    map[uuid.UUID]bool
}

var errStoreDown = errors.New("store down")

func newMemRepo() *memRepo {
	return &memRepo{
		players:      make(map[uuid.UUID]domain.Player),
		rounds:       make(map[int64]*domain.Round),
		dishes:       make(map[int64]domain.Dish),
		votes:        make(map[int64][]uuid.UUID),
		stats:        make(map[uuid.UUID]domain.PlayerStats),
		failDeltaFor: make(map[uuid.UUID]bool),
	}
}

func (m *memRepo) Health(ctx context.Context) error { return nil }

func (m *memRepo) RegisterPlayer(ctx context.Context, displayName string) (*domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.DisplayName == displayName {
			return nil, domain.NewConflictError("display name already taken")
		}
	}
	p := domain.Player{ID: uuid.New(), DisplayName: displayName, CreatedAt: time.Now()}
	m.players[p.ID] = p
	return &p, nil
}

func (m *memRepo) GetPlayerByID(ctx context.Context, playerID uuid.UUID) (*domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return nil, domain.NewNotFoundError("player")
	}
	return &p, nil
}

func (m *memRepo) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) CreateRound(ctx context.Context, name string) (*domain.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRound++
	r := &domain.Round{ID: m.nextRound, Name: name, Status: domain.RoundUpcoming, CreatedAt: time.Now()}
	m.rounds[r.ID] = r
	return copyRound(r), nil
}

func (m *memRepo) GetRoundByID(ctx context.Context, roundID int64) (*domain.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return nil, domain.NewNotFoundError("round")
	}
	return copyRound(r), nil
}

func (m *memRepo) GetOpenRound(ctx context.Context) (*domain.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rounds {
		if r.Status == domain.RoundVotingOpen {
			return copyRound(r), nil
		}
	}
	return nil, nil
}

func (m *memRepo) GetLatestRound(ctx context.Context) (*domain.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[m.nextRound]
	if !ok {
		return nil, nil
	}
	return copyRound(r), nil
}

func (m *memRepo) ListRounds(ctx context.Context) ([]domain.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Round, 0, len(m.rounds))
	for id := m.nextRound; id >= 1; id-- {
		if r, ok := m.rounds[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) ListFinalizedRounds(ctx context.Context) ([]domain.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Round
	for id := int64(1); id <= m.nextRound; id++ {
		if r, ok := m.rounds[id]; ok && r.Status == domain.RoundFinalized {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) OpenRound(ctx context.Context, roundID int64) (*domain.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rounds {
		if r.Status == domain.RoundVotingOpen {
			return nil, domain.NewConflictError("another round is already open for voting")
		}
	}
	r, ok := m.rounds[roundID]
	if !ok {
		return nil, domain.NewNotFoundError("round")
	}
	if r.Status != domain.RoundUpcoming {
		return nil, domain.NewConflictError("round is not in upcoming state")
	}
	r.Status = domain.RoundVotingOpen
	return copyRound(r), nil
}

func (m *memRepo) FinalizeRound(ctx context.Context, roundID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok || r.Status != domain.RoundVotingOpen {
		return false, nil
	}
	now := time.Now()
	r.Status = domain.RoundFinalized
	r.FinalizedAt = &now
	return true, nil
}

func (m *memRepo) CreateDish(ctx context.Context, roundID int64, ownerID uuid.UUID, name, imageRef string) (*domain.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.dishes {
		if d.RoundID == roundID && d.OwnerID == ownerID {
			return nil, domain.NewDuplicateSubmissionError()
		}
	}
	m.nextDish++
	d := domain.Dish{ID: m.nextDish, RoundID: roundID, OwnerID: ownerID, Name: name, ImageRef: imageRef, SubmittedAt: time.Now()}
	m.dishes[d.ID] = d
	return &d, nil
}

func (m *memRepo) GetDishByID(ctx context.Context, dishID int64) (*domain.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dishes[dishID]
	if !ok {
		return nil, domain.NewNotFoundError("dish")
	}
	return &d, nil
}

func (m *memRepo) ListDishesByRound(ctx context.Context, roundID int64) ([]domain.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Dish
	for id := int64(1); id <= m.nextDish; id++ {
		if d, ok := m.dishes[id]; ok && d.RoundID == roundID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memRepo) CreateRating(ctx context.Context, dishID int64, voterID uuid.UUID, score int) (*domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.ratings {
		if r.DishID == dishID && r.VoterID == voterID {
			return nil, domain.NewDuplicateRatingError()
		}
	}
	m.nextRating++
	r := domain.Rating{ID: m.nextRating, DishID: dishID, VoterID: voterID, Score: score}
	m.ratings = append(m.ratings, r)
	return &r, nil
}

func (m *memRepo) ListRatingsByRound(ctx context.Context, roundID int64) ([]domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListRatings {
		return nil, errStoreDown
	}
	var out []domain.Rating
	for _, r := range m.ratings {
		if d, ok := m.dishes[r.DishID]; ok && d.RoundID == roundID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) CreateFinalizationVote(ctx context.Context, roundID int64, voterID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.votes[roundID] {
		if v == voterID {
			return domain.NewConflictError("already voted to finalize this round")
		}
	}
	m.votes[roundID] = append(m.votes[roundID], voterID)
	return nil
}

func (m *memRepo) CountFinalizationVotes(ctx context.Context, roundID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCountVotes {
		return 0, errStoreDown
	}
	return len(m.votes[roundID]), nil
}

func (m *memRepo) ListFinalizationVoters(ctx context.Context, roundID int64) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.votes[roundID]...), nil
}

func (m *memRepo) GetPlayerStats(ctx context.Context, playerID uuid.UUID) (*domain.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[playerID]
	if !ok {
		return &domain.PlayerStats{PlayerID: playerID}, nil
	}
	return &s, nil
}

func (m *memRepo) ApplyStatsDelta(ctx context.Context, playerID uuid.UUID, delta ports.StatsDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeltaFor[playerID] {
		return errStoreDown
	}
	s := m.stats[playerID]
	s.PlayerID = playerID
	s.TotalPoints += delta.Points
	s.GamesPlayed += delta.Games
	s.Wins += delta.Wins
	if s.GamesPlayed > 0 {
		s.OverallAverage = s.TotalPoints / float64(s.GamesPlayed)
	} else {
		s.OverallAverage = 0
	}
	m.stats[playerID] = s
	return nil
}

func (m *memRepo) RefreshReceivedAverage(ctx context.Context, playerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, count int
	for _, r := range m.ratings {
		if d, ok := m.dishes[r.DishID]; ok && d.OwnerID == playerID {
			sum += r.Score
			count++
		}
	}
	s := m.stats[playerID]
	s.PlayerID = playerID
	if count > 0 {
		s.ReceivedAverage = float64(sum) / float64(count)
	} else {
		s.ReceivedAverage = 0
	}
	m.stats[playerID] = s
	return nil
}

func (m *memRepo) Leaderboard(ctx context.Context) ([]ports.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.LeaderboardEntry, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, ports.LeaderboardEntry{Player: p, Stats: m.stats[p.ID]})
	}
	return out, nil
}

func (m *memRepo) ResetAllStats(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failResetAll {
		return errStoreDown
	}
	for id := range m.stats {
		m.stats[id] = domain.PlayerStats{PlayerID: id}
	}
	return nil
}

func (m *memRepo) ResetPlayerStats(ctx context.Context, playerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stats[playerID]; ok {
		m.stats[playerID] = domain.PlayerStats{PlayerID: playerID}
	}
	return nil
}

func (m *memRepo) ResetContest(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = make(map[int64]*domain.Round)
	m.dishes = make(map[int64]domain.Dish)
	m.ratings = nil
	m.votes = make(map[int64][]uuid.UUID)
	m.stats = make(map[uuid.UUID]domain.PlayerStats)
	m.nextRound, m.nextDish, m.nextRating = 0, 0, 0
	return nil
}

func copyRound(r *domain.Round) *domain.Round {
	c := *r
	return &c
}

// testEnv wires the full use case stack over the in-memory repository.
type testEnv struct {
	repo       *memRepo
	players    *PlayerService
	rounds     *RoundService
	submission *SubmissionService
	completion *CompletionService
	scoring    *ScoringService
	admin      *AdminService
}

func newTestEnv(t *testing.T, quorum int) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemRepo()
	completion := NewCompletionService(repo, quorum, log)
	scoring := NewScoringService(repo, log)
	rounds := NewRoundService(repo, completion, scoring, quorum, log)
	return &testEnv{
		repo:       repo,
		players:    NewPlayerService(repo, log),
		rounds:     rounds,
		submission: NewSubmissionService(repo, rounds, log),
		completion: completion,
		scoring:    scoring,
		admin:      NewAdminService(repo, scoring, log),
	}
}

func (e *testEnv) addPlayer(t *testing.T, name string) uuid.UUID {
	t.Helper()
	p, err := e.players.Register(context.Background(), name)
	if err != nil {
		t.Fatalf("register player %s: %v", name, err)
	}
	return p.ID
}

func (e *testEnv) openRound(t *testing.T, name string) int64 {
	t.Helper()
	ctx := context.Background()
	round, err := e.rounds.Create(ctx, name)
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	if _, err := e.rounds.OpenVoting(ctx, round.ID); err != nil {
		t.Fatalf("open round: %v", err)
	}
	return round.ID
}

func (e *testEnv) addDish(t *testing.T, roundID int64, owner uuid.UUID, name string) int64 {
	t.Helper()
	d, err := e.submission.SubmitDish(context.Background(), owner, roundID, name, "")
	if err != nil {
		t.Fatalf("submit dish %s: %v", name, err)
	}
	return d.ID
}
