// Package records keeps the best results and rolling statistics of finished
// games and persists them through a KV backend.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"memory-game-solo/game"
	"memory-game-solo/gameerrors"
)

// DefaultRecentLimit is how many recent scores are kept when no limit is configured.
const DefaultRecentLimit = 5

// BestTimes holds the fastest winning time per difficulty, in seconds.
type BestTimes struct {
	Easy   *int `json:"easy"`
	Medium *int `json:"medium"`
	Hard   *int `json:"hard"`
}

// Get returns the slot for d.
func (b *BestTimes) Get(d game.Difficulty) *int {
	switch d {
	case game.Easy:
		return b.Easy
	case game.Hard:
		return b.Hard
	default:
		return b.Medium
	}
}

func (b *BestTimes) set(d game.Difficulty, v int) {
	switch d {
	case game.Easy:
		b.Easy = &v
	case game.Hard:
		b.Hard = &v
	default:
		b.Medium = &v
	}
}

// Stats are the rolling statistics across all games.
type Stats struct {
	GamesPlayed   int   `json:"games"`
	Wins          int   `json:"wins"`
	BestScoreEver *int  `json:"bestScore"`
	BestTimeEver  *int  `json:"bestTime"`
	RecentScores  []int `json:"scoreHistory"`
}

// BestRecords is everything that survives across sessions.
type BestRecords struct {
	BestScore            *int      `json:"bestScore"`
	BestTimeByDifficulty BestTimes `json:"bestTimeByDifficulty"`
	Stats                Stats     `json:"stats"`
}

// Default returns empty records.
func Default() BestRecords {
	return BestRecords{Stats: Stats{RecentScores: []int{}}}
}

// Clone returns a deep copy of r.
func (r BestRecords) Clone() BestRecords {
	out := BestRecords{
		BestScore: cloneInt(r.BestScore),
		BestTimeByDifficulty: BestTimes{
			Easy:   cloneInt(r.BestTimeByDifficulty.Easy),
			Medium: cloneInt(r.BestTimeByDifficulty.Medium),
			Hard:   cloneInt(r.BestTimeByDifficulty.Hard),
		},
		Stats: Stats{
			GamesPlayed:   r.Stats.GamesPlayed,
			Wins:          r.Stats.Wins,
			BestScoreEver: cloneInt(r.Stats.BestScoreEver),
			BestTimeEver:  cloneInt(r.Stats.BestTimeEver),
			RecentScores:  append([]int{}, r.Stats.RecentScores...),
		},
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Apply folds a finished game into rec and returns the updated copy.
// Scores only count in score mode; ties never replace a best value.
func Apply(rec BestRecords, o game.Outcome, limit int) BestRecords {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := rec.Clone()
	out.Stats.GamesPlayed++

	if o.Result == game.Won {
		out.Stats.Wins++
		if o.Mode == game.ScoreMode {
			if out.BestScore == nil || o.Score > *out.BestScore {
				out.BestScore = cloneInt(&o.Score)
			}
			if out.Stats.BestScoreEver == nil || o.Score > *out.Stats.BestScoreEver {
				out.Stats.BestScoreEver = cloneInt(&o.Score)
			}
		}
		if best := out.BestTimeByDifficulty.Get(o.Difficulty); best == nil || o.TimeTaken < *best {
			out.BestTimeByDifficulty.set(o.Difficulty, o.TimeTaken)
		}
		if out.Stats.BestTimeEver == nil || o.TimeTaken < *out.Stats.BestTimeEver {
			out.Stats.BestTimeEver = cloneInt(&o.TimeTaken)
		}
	}

	if o.Mode == game.ScoreMode {
		out.Stats.RecentScores = trimRecent(append(out.Stats.RecentScores, o.Score), limit)
	}
	return out
}

func trimRecent(scores []int, limit int) []int {
	if len(scores) <= limit {
		return scores
	}
	return append([]int{}, scores[len(scores)-limit:]...)
}

// Recorder owns the process-wide BestRecords and writes every change through to a KV.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	kv      KV
	limit   int
	current BestRecords
}

// NewRecorder returns a Recorder with default records. Call Load to read the backend.
// A nil kv keeps records in memory only.
func NewRecorder(kv KV, limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &Recorder{kv: kv, limit: limit, current: Default()}
}

// Load reads the stored records. On failure the recorder keeps defaults for the
// keys it could not read and the returned error wraps ErrPersistenceRead.
func (r *Recorder) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.kv == nil {
		return nil
	}
	rec, err := decode(ctx, r.kv, r.limit)
	r.current = rec
	if err != nil {
		slog.Warn("reading records, using defaults", "tag", "records", "err", err)
		return fmt.Errorf("%w: %v", gameerrors.ErrPersistenceRead, err)
	}
	slog.Info("records loaded", "tag", "records", "games", rec.Stats.GamesPlayed, "wins", rec.Stats.Wins)
	return nil
}

// Record applies a finished game and persists all keys in one write.
// A failed write keeps the updated records in memory and returns an error
// wrapping ErrPersistenceWrite.
func (r *Recorder) Record(ctx context.Context, o game.Outcome) (BestRecords, error) {
	if !o.Result.Terminal() {
		return r.Snapshot(), fmt.Errorf("%w: outcome %s is not final", gameerrors.ErrInvalidTransition, o.Result)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = Apply(r.current, o, r.limit)
	snapshot := r.current.Clone()

	if r.kv == nil {
		return snapshot, nil
	}
	values, err := encode(snapshot)
	if err == nil {
		err = r.kv.Set(ctx, values)
	}
	if err != nil {
		slog.Error("writing records", "tag", "records", "err", err)
		return snapshot, fmt.Errorf("%w: %v", gameerrors.ErrPersistenceWrite, err)
	}
	return snapshot, nil
}

// Snapshot returns a copy of the current records.
func (r *Recorder) Snapshot() BestRecords {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone()
}
