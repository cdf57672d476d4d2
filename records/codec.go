package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Storage keys. The values are the formats the browser version of the game
// kept in local storage, so exported data can be imported unchanged.
const (
	KeyBestScore = "memoryGameBestScore"
	KeyBestTime  = "memoryGameBestTime"
	KeyStats     = "memoryGameStats"
)

// Keys lists every key the recorder reads and writes.
var Keys = []string{KeyBestScore, KeyBestTime, KeyStats}

// encode renders rec as one value per key. An absent best score is stored as "".
func encode(rec BestRecords) (map[string]string, error) {
	bestTime, err := json.Marshal(rec.BestTimeByDifficulty)
	if err != nil {
		return nil, fmt.Errorf("encoding best times: %w", err)
	}
	stats := rec.Stats
	if stats.RecentScores == nil {
		stats.RecentScores = []int{}
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encoding stats: %w", err)
	}

	bestScore := ""
	if rec.BestScore != nil {
		bestScore = strconv.Itoa(*rec.BestScore)
	}
	return map[string]string{
		KeyBestScore: bestScore,
		KeyBestTime:  string(bestTime),
		KeyStats:     string(statsJSON),
	}, nil
}

// decode reads every key from kv. Missing or malformed values fall back to
// defaults per key; only backend errors are returned.
func decode(ctx context.Context, kv KV, limit int) (BestRecords, error) {
	rec := Default()
	var errs []error

	if raw, ok, err := kv.Get(ctx, KeyBestScore); err != nil {
		errs = append(errs, fmt.Errorf("get %s: %w", KeyBestScore, err))
	} else if ok && strings.TrimSpace(raw) != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			rec.BestScore = &v
		} else {
			malformed(KeyBestScore, err)
		}
	}

	if raw, ok, err := kv.Get(ctx, KeyBestTime); err != nil {
		errs = append(errs, fmt.Errorf("get %s: %w", KeyBestTime, err))
	} else if ok && raw != "" {
		var bt BestTimes
		if err := json.Unmarshal([]byte(raw), &bt); err == nil {
			rec.BestTimeByDifficulty = bt
		} else {
			malformed(KeyBestTime, err)
		}
	}

	if raw, ok, err := kv.Get(ctx, KeyStats); err != nil {
		errs = append(errs, fmt.Errorf("get %s: %w", KeyStats, err))
	} else if ok && raw != "" {
		var st Stats
		if err := json.Unmarshal([]byte(raw), &st); err == nil {
			if st.RecentScores == nil {
				st.RecentScores = []int{}
			}
			st.RecentScores = trimRecent(st.RecentScores, limit)
			rec.Stats = st
		} else {
			malformed(KeyStats, err)
		}
	}

	return rec, errors.Join(errs...)
}

func malformed(key string, err error) {
	slog.Warn("ignoring malformed stored value", "tag", "records", "key", key, "err", err)
}
