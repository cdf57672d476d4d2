package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memory-game-solo/game"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS game_history (
	id         UUID PRIMARY KEY,
	played_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	result     TEXT NOT NULL,
	mode       TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	score      INT NOT NULL,
	moves      INT NOT NULL,
	time_taken INT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_history_played_at ON game_history(played_at DESC);
`

const upsertSQL = `
INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// Store persists records and finished games in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// GameRecord is one finished game as stored in game_history.
type GameRecord struct {
	ID         string    `json:"id"`
	PlayedAt   time.Time `json:"playedAt"`
	Result     string    `json:"result"`
	Mode       string    `json:"mode"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	Moves      int       `json:"moves"`
	TimeTaken  int       `json:"timeTaken"`
}

// NewStore connects to Postgres and ensures the tables exist.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Get returns the stored value for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.pool == nil {
		return "", false, nil
	}
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts all values in one transaction.
func (s *Store) Set(ctx context.Context, values map[string]string) error {
	if s == nil || s.pool == nil || len(values) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(upsertSQL, k, v)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// InsertGameResult records a finished game under gameID (a UUID).
func (s *Store) InsertGameResult(ctx context.Context, gameID string, o game.Outcome) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_history (id, result, mode, difficulty, score, moves, time_taken) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		gameID, o.Result.String(), o.Mode.String(), o.Difficulty.String(), o.Score, o.Moves, o.TimeTaken)
	return err
}

// ListRecent returns the most recent games, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]GameRecord, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, played_at, result, mode, difficulty, score, moves, time_taken
		 FROM game_history ORDER BY played_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (GameRecord, error) {
		var r GameRecord
		err := row.Scan(&r.ID, &r.PlayedAt, &r.Result, &r.Mode, &r.Difficulty, &r.Score, &r.Moves, &r.TimeTaken)
		return r, err
	})
}
