package game

import "slices"

// Undo reverses the most recent mismatch: both tiles go face-down, the
// penalty is refunded and the move is not counted. Usable once per session.
// A tile the hint is still showing stays face-up until the hint hides it.
func (s *Session) Undo() error {
	if s.Phase.Terminal() {
		return invalid("game is over")
	}
	if s.UndoUsed {
		return invalid("undo already used")
	}
	p := s.PendingUndo
	if p == nil {
		return invalid("no mismatch to undo")
	}

	for _, id := range p.Tiles {
		tile := &s.Board.Tiles[id]
		tile.Wrong = false
		if !tile.HintRevealed {
			tile.FaceUp = false
		}
	}
	s.Flipped = s.Flipped[:0]
	s.Score = p.ScoreBefore
	s.Lives = p.LivesBefore
	s.Moves = max(0, s.Moves-1)
	s.UndoUsed = true
	s.PendingUndo = nil
	// Drop the flip-back still scheduled for this pair.
	s.evalSeq++
	return nil
}

// Hint briefly reveals one unmatched pair. Usable once per session; the
// hint is only consumed when a pair is actually shown.
func (s *Session) Hint() error {
	if s.HintUsed {
		return invalid("hint already used")
	}
	if s.Phase.Terminal() {
		return invalid("game is over")
	}
	if !s.ready {
		return invalid("ready countdown in progress")
	}
	if len(s.Flipped) > 0 {
		return invalid("a flip is in progress")
	}
	a, b, ok := s.Board.hintPair()
	if !ok {
		return invalid("no pair left to reveal")
	}

	s.HintUsed = true
	for _, id := range []int{a, b} {
		tile := &s.Board.Tiles[id]
		tile.FaceUp = true
		tile.HintRevealed = true
	}
	s.schedule(s.cfg.HintRevealMS, func() { s.hideHint(a, b) })
	return nil
}

func (s *Session) hideHint(ids ...int) {
	for _, id := range ids {
		tile := &s.Board.Tiles[id]
		if !tile.HintRevealed {
			continue
		}
		tile.HintRevealed = false
		if !tile.Matched && !slices.Contains(s.Flipped, id) {
			tile.FaceUp = false
		}
	}
}
