package storage

import (
	"context"

	"memory-game-solo/game"
	"memory-game-solo/records"
)

// HistoryStore abstracts persistence of finished games.
// Implementations can be swapped for testing or different backends.
type HistoryStore interface {
	InsertGameResult(ctx context.Context, gameID string, o game.Outcome) error
	ListRecent(ctx context.Context, limit int) ([]GameRecord, error)
}

// Ensure *Store implements both persistence boundaries at compile time.
var (
	_ HistoryStore = (*Store)(nil)
	_ records.KV   = (*Store)(nil)
)
