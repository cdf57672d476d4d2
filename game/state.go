package game

import "fmt"

// TileView is the client-facing representation of a tile.
// Symbol is only included while the tile is visible.
type TileView struct {
	Index        int    `json:"index"`
	Symbol       string `json:"symbol,omitempty"`
	FaceUp       bool   `json:"faceUp"`
	Matched      bool   `json:"matched"`
	Wrong        bool   `json:"wrong,omitempty"`
	HintRevealed bool   `json:"hintRevealed,omitempty"`
}

// GameStateMsg is the full session state sent to the client after every change.
type GameStateMsg struct {
	Type         string     `json:"type"`
	GameID       string     `json:"gameId,omitempty"`
	Tiles        []TileView `json:"tiles"`
	Columns      int        `json:"columns"`
	Phase        string     `json:"phase"`
	ReadyStep    string     `json:"readyStep,omitempty"`
	Score        int        `json:"score"`
	Lives        int        `json:"lives"`
	Moves        int        `json:"moves"`
	MatchedPairs int        `json:"matchedPairs"`
	TotalPairs   int        `json:"totalPairs"`
	TimeDisplay  string     `json:"timeDisplay"`
	GameOver     bool       `json:"gameOver"`
	// Outcome is "win" or "lose" once the game is over.
	Outcome       string `json:"outcome,omitempty"`
	HintAvailable bool   `json:"hintAvailable"`
	UndoAvailable bool   `json:"undoAvailable"`
	Difficulty    string `json:"difficulty"`
	SymbolSet     string `json:"symbolSet"`
	Mode          string `json:"mode"`
	Countdown     bool   `json:"countdown"`
}

// GameOverMsg is sent once when a session ends.
// Score is omitted in lives mode.
type GameOverMsg struct {
	Type        string `json:"type"`
	Result      string `json:"result"`
	Score       *int   `json:"score,omitempty"`
	Moves       int    `json:"moves"`
	TimeTaken   int    `json:"timeTaken"`
	TimeDisplay string `json:"timeDisplay"`
}

// BuildTileViews constructs the client-facing tile list.
func BuildTileViews(board *Board) []TileView {
	views := make([]TileView, len(board.Tiles))
	for i, tile := range board.Tiles {
		tv := TileView{
			Index:        tile.ID,
			FaceUp:       tile.FaceUp,
			Matched:      tile.Matched,
			Wrong:        tile.Wrong,
			HintRevealed: tile.HintRevealed,
		}
		if tile.FaceUp || tile.Matched {
			tv.Symbol = tile.Symbol
		}
		views[i] = tv
	}
	return views
}

// BuildState projects a session onto the render sink.
func BuildState(s *Session) GameStateMsg {
	over := s.Phase.Terminal()
	return GameStateMsg{
		Type:          "game_state",
		Tiles:         BuildTileViews(s.Board),
		Columns:       s.Board.Cols,
		Phase:         s.Phase.String(),
		ReadyStep:     s.ReadyStep,
		Score:         s.Score,
		Lives:         s.Lives,
		Moves:         s.Moves,
		MatchedPairs:  s.MatchedPairs,
		TotalPairs:    s.Board.TotalPairs(),
		TimeDisplay:   FormatTime(s.Timer.Value()),
		GameOver:      over,
		Outcome:       resultLabel(s.Phase),
		HintAvailable: !s.HintUsed && !over,
		UndoAvailable: !s.UndoUsed && s.PendingUndo != nil && !over,
		Difficulty:    s.Options.Difficulty.String(),
		SymbolSet:     s.Options.SymbolSet,
		Mode:          s.Options.Mode.String(),
		Countdown:     s.Options.Countdown,
	}
}

// BuildGameOver summarizes a finished session.
func BuildGameOver(o Outcome) GameOverMsg {
	msg := GameOverMsg{
		Type:        "game_over",
		Result:      resultLabel(o.Result),
		Moves:       o.Moves,
		TimeTaken:   o.TimeTaken,
		TimeDisplay: FormatTime(o.TimeTaken),
	}
	if o.Mode == ScoreMode {
		score := o.Score
		msg.Score = &score
	}
	return msg
}

// FormatTime renders seconds as m:ss; negative values show as 0:00.
func FormatTime(seconds int) string {
	seconds = max(0, seconds)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func resultLabel(p Phase) string {
	switch p {
	case Won:
		return "win"
	case Lost:
		return "lose"
	default:
		return ""
	}
}
