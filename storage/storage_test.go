package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-game-solo/game"
	"memory-game-solo/records"
)

func TestNewStore_EmptyURL(t *testing.T) {
	s, err := NewStore(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNilStoreIsNoop(t *testing.T) {
	ctx := context.Background()
	var s *Store

	v, ok, err := s.Get(ctx, records.KeyStats)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	require.NoError(t, s.Set(ctx, map[string]string{records.KeyStats: "{}"}))
	require.NoError(t, s.InsertGameResult(ctx, uuid.NewString(), game.Outcome{Result: game.Won}))

	list, err := s.ListRecent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	s.Close()
}

// TestStoreRoundTrip runs against a real database when TEST_DATABASE_URL is set.
func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	r := records.NewRecorder(s, 5)
	require.NoError(t, r.Load(ctx))
	before := r.Snapshot()

	o := game.Outcome{Result: game.Won, Mode: game.ScoreMode, Difficulty: game.Easy, Score: 90, Moves: 6, TimeTaken: 12}
	snap, err := r.Record(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, before.Stats.GamesPlayed+1, snap.Stats.GamesPlayed)

	reloaded := records.NewRecorder(s, 5)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, snap, reloaded.Snapshot())

	id := uuid.NewString()
	require.NoError(t, s.InsertGameResult(ctx, id, o))
	list, err := s.ListRecent(ctx, 50)
	require.NoError(t, err)
	found := false
	for _, g := range list {
		if g.ID == id {
			found = true
			assert.Equal(t, "won", g.Result)
			assert.Equal(t, "easy", g.Difficulty)
		}
	}
	assert.True(t, found, "inserted game should be listed")
}
