package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vovakirdan/math-arcade/internal/leaderboard"
)

// PostgresStore keeps entries in Postgres. created_at is assigned by the
// database clock on insert.
type PostgresStore struct {
	db *pgxpool.Pool
}

var _ leaderboard.Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open pool. Call Migrate before first use.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to dsn, pings and migrates.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse postgres dsn: %w", err)
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate creates the schema if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS leaderboard_entries (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	game_type TEXT NOT NULL,
	score INTEGER NOT NULL CHECK (score >= 0),
	points INTEGER NOT NULL CHECK (points >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE INDEX IF NOT EXISTS idx_entries_rank
	ON leaderboard_entries (game_type, points DESC, score DESC, created_at ASC, id ASC);`

	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("storage: migrate postgres: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) CreateEntry(ctx context.Context, e leaderboard.NewEntry) (leaderboard.Entry, error) {
	const stmt = `
INSERT INTO leaderboard_entries (user_id, game_type, score, points)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at;`

	entry := leaderboard.Entry{
		UserID:   e.UserID,
		GameType: e.GameType,
		Score:    e.Score,
		Points:   e.Points,
	}

	if err := s.db.QueryRow(ctx, stmt, e.UserID, e.GameType, e.Score, e.Points).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot save entry: %w", err)
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	return entry, nil
}

func (s *PostgresStore) ListEntries(ctx context.Context, gameType string, limit, offset int) ([]leaderboard.Entry, error) {
	const stmt = `
SELECT id, user_id, game_type, score, points, created_at
FROM leaderboard_entries
WHERE game_type = $1
ORDER BY points DESC, score DESC, created_at ASC, id ASC
LIMIT $2 OFFSET $3;`

	if limit <= 0 {
		limit = leaderboard.DefaultTopN
	}

	rows, err := s.db.Query(ctx, stmt, gameType, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (leaderboard.Entry, error) {
		var e leaderboard.Entry
		if err := r.Scan(&e.ID, &e.UserID, &e.GameType, &e.Score, &e.Points, &e.CreatedAt); err != nil {
			return leaderboard.Entry{}, err
		}
		e.CreatedAt = e.CreatedAt.UTC()
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: cannot scan entries: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) CountBetter(ctx context.Context, e leaderboard.Entry) (int, error) {
	const stmt = `
SELECT COUNT(*) FROM leaderboard_entries
WHERE game_type = $1 AND (
	points > $2
	OR (points = $2 AND score > $3)
	OR (points = $2 AND score = $3 AND created_at < $4)
	OR (points = $2 AND score = $3 AND created_at = $4 AND id < $5)
);`

	var n int
	if err := s.db.QueryRow(ctx, stmt, e.GameType, e.Points, e.Score, e.CreatedAt, e.ID).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count entries: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) GameStats(ctx context.Context, gameType string) (leaderboard.Stats, error) {
	const stmt = `
SELECT COUNT(*), COALESCE(MAX(points), 0), COALESCE(ROUND(AVG(points), 2), 0)
FROM leaderboard_entries
WHERE game_type = $1;`

	stats := leaderboard.Stats{GameType: gameType}
	var avg decimal.Decimal
	if err := s.db.QueryRow(ctx, stmt, gameType).Scan(&stats.GamesPlayed, &stats.BestPoints, &avg); err != nil {
		return stats, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	stats.AvgPoints = avg

	return stats, nil
}
