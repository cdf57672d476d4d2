package game

import (
	"encoding/json"
	"testing"
)

func TestBuildTileViews_HiddenTilesOmitSymbol(t *testing.T) {
	board := NewBoard([]string{"a", "b", "a", "b"}, 2)
	board.Tiles[1].FaceUp = true
	board.Tiles[2].Matched = true
	board.Tiles[3].FaceUp = true
	board.Tiles[3].HintRevealed = true

	views := BuildTileViews(board)

	if views[0].Symbol != "" {
		t.Errorf("hidden tile should not expose its symbol, got %q", views[0].Symbol)
	}
	if views[1].Symbol != "b" || !views[1].FaceUp {
		t.Errorf("face-up tile should show its symbol, got %+v", views[1])
	}
	if views[2].Symbol != "a" || !views[2].Matched {
		t.Errorf("matched tile should show its symbol, got %+v", views[2])
	}
	if !views[3].HintRevealed {
		t.Errorf("expected hint flag on tile 3, got %+v", views[3])
	}
}

func TestBuildTileViews_JSONOmitsHiddenSymbol(t *testing.T) {
	board := NewBoard([]string{"a", "a"}, 2)
	data, err := json.Marshal(BuildTileViews(board))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw[0]["symbol"]; ok {
		t.Errorf("hidden tile JSON should not contain symbol: %s", data)
	}
}

func TestBuildState(t *testing.T) {
	s, sched := newTestSession(t, testConfig(), easyScore())
	mismatch(t, s, sched)

	state := BuildState(s)

	if state.Type != "game_state" {
		t.Errorf("expected type game_state, got %q", state.Type)
	}
	if state.Score != 96 || state.Moves != 1 || state.Columns != 2 || state.TotalPairs != 4 {
		t.Errorf("unexpected aggregate state %+v", state)
	}
	if !state.UndoAvailable || !state.HintAvailable {
		t.Errorf("expected undo and hint available, got undo=%v hint=%v", state.UndoAvailable, state.HintAvailable)
	}
	if state.Phase != "in_progress" || state.GameOver || state.Outcome != "" {
		t.Errorf("unexpected phase fields %q/%v/%q", state.Phase, state.GameOver, state.Outcome)
	}
	if state.Difficulty != "easy" || state.Mode != "score" || state.SymbolSet != "numbers" {
		t.Errorf("unexpected options %q/%q/%q", state.Difficulty, state.Mode, state.SymbolSet)
	}
	if state.TimeDisplay != "0:00" {
		t.Errorf("expected 0:00 before the first tick, got %q", state.TimeDisplay)
	}
}

func TestBuildState_GameOver(t *testing.T) {
	cfg := testConfig()
	cfg.StartingLives = 1
	s, sched := newTestSession(t, cfg, Options{Difficulty: Easy, SymbolSet: "greek", Mode: LivesMode})
	mismatch(t, s, sched)

	state := BuildState(s)
	if !state.GameOver || state.Outcome != "lose" {
		t.Errorf("expected a lost game, got gameOver=%v outcome=%q", state.GameOver, state.Outcome)
	}
	if state.UndoAvailable || state.HintAvailable {
		t.Error("power-ups should be unavailable once the game is over")
	}
}

func TestBuildGameOver(t *testing.T) {
	msg := BuildGameOver(Outcome{Result: Won, Mode: ScoreMode, Score: 92, Moves: 10, TimeTaken: 75})
	if msg.Result != "win" || msg.Score == nil || *msg.Score != 92 || msg.TimeDisplay != "1:15" {
		t.Errorf("unexpected game over message %+v", msg)
	}

	msg = BuildGameOver(Outcome{Result: Lost, Mode: LivesMode, Score: 100})
	if msg.Result != "lose" || msg.Score != nil {
		t.Errorf("lives mode should omit the score, got %+v", msg)
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{9, "0:09"},
		{60, "1:00"},
		{125, "2:05"},
		{-3, "0:00"},
	}
	for _, tc := range tests {
		if got := FormatTime(tc.seconds); got != tc.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
