// Package storage persists leaderboard entries. SQLite (pure Go, no CGO) is
// the default for local and SSH play; Postgres and Redis back the HTTP
// server. Every store ranks with the same total order as
// leaderboard.Compare.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/math-arcade/internal/leaderboard"
)

// SQLiteStore manages the SQLite database connection for leaderboard entries.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time

	// mu spans the clock read and the insert, so ID order and created_at
	// order always agree. last keeps created_at from going backwards.
	mu   sync.Mutex
	last int64
}

var _ leaderboard.Store = (*SQLiteStore)(nil)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*SQLiteStore, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SQLite allows one writer at a time anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	if err := db.QueryRow(`SELECT COALESCE(MAX(created_at), 0) FROM leaderboard_entries`).Scan(&store.last); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot read latest entry: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
// created_at is Unix nanoseconds so ties compare exactly.
func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS leaderboard_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			game_type TEXT NOT NULL,
			score INTEGER NOT NULL,
			points INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entries_rank
			ON leaderboard_entries(game_type, points DESC, score DESC, created_at ASC, id ASC);
		CREATE INDEX IF NOT EXISTS idx_entries_user ON leaderboard_entries(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateEntry records a finished game. ID and CreatedAt are assigned here.
func (s *SQLiteStore) CreateEntry(ctx context.Context, e leaderboard.NewEntry) (leaderboard.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := max(s.now().UTC().UnixNano(), s.last)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard_entries (user_id, game_type, score, points, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.GameType, e.Score, e.Points, createdAt,
	)
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot save entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	s.last = createdAt

	return leaderboard.Entry{
		ID:        id,
		UserID:    e.UserID,
		GameType:  e.GameType,
		Score:     e.Score,
		Points:    e.Points,
		CreatedAt: time.Unix(0, createdAt).UTC(),
	}, nil
}

// ListEntries returns entries of gameType in rank order.
func (s *SQLiteStore) ListEntries(ctx context.Context, gameType string, limit, offset int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultTopN
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, game_type, score, points, created_at
		 FROM leaderboard_entries
		 WHERE game_type = ?
		 ORDER BY points DESC, score DESC, created_at ASC, id ASC
		 LIMIT ? OFFSET ?`,
		gameType, limit, max(offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query entries: %w", err)
	}
	defer rows.Close()

	entries := []leaderboard.Entry{}
	for rows.Next() {
		var (
			e         leaderboard.Entry
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.GameType, &e.Score, &e.Points, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// CountBetter counts entries ranked strictly ahead of e, using e's own
// CreatedAt and ID for ties.
func (s *SQLiteStore) CountBetter(ctx context.Context, e leaderboard.Entry) (int, error) {
	createdAt := e.CreatedAt.UnixNano()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaderboard_entries
		 WHERE game_type = ?1 AND (
			points > ?2
			OR (points = ?2 AND score > ?3)
			OR (points = ?2 AND score = ?3 AND created_at < ?4)
			OR (points = ?2 AND score = ?3 AND created_at = ?4 AND id < ?5)
		 )`,
		e.GameType, e.Points, e.Score, createdAt, e.ID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count entries: %w", err)
	}

	return n, nil
}

// GameStats returns aggregated statistics for gameType.
func (s *SQLiteStore) GameStats(ctx context.Context, gameType string) (leaderboard.Stats, error) {
	stats := leaderboard.Stats{GameType: gameType}

	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(points), 0), COALESCE(SUM(points), 0)
		 FROM leaderboard_entries WHERE game_type = ?`,
		gameType,
	).Scan(&stats.GamesPlayed, &stats.BestPoints, &total)
	if err != nil {
		return stats, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	stats.AvgPoints = average(total, stats.GamesPlayed)
	return stats, nil
}

// average returns total/n rounded to two places, or zero when n is zero.
func average(total int64, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).DivRound(decimal.NewFromInt(int64(n)), 2)
}
