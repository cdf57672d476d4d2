package game

import "slices"

// Flip turns tile id face-up. A second flip completes the pair and evaluates it.
// Disallowed flips return an ErrInvalidTransition and change nothing.
func (s *Session) Flip(id int) error {
	if s.Phase.Terminal() {
		return invalid("game is over")
	}
	if !s.ready {
		return invalid("ready countdown in progress")
	}
	if len(s.Flipped) >= 2 {
		return invalid("waiting for the current pair to resolve")
	}
	if id < 0 || id >= len(s.Board.Tiles) {
		return invalid("tile index out of bounds")
	}
	if slices.Contains(s.Flipped, id) {
		return invalid("tile already flipped")
	}
	tile := &s.Board.Tiles[id]
	if tile.FaceUp || tile.Matched {
		return invalid("tile is already face-up or matched")
	}

	if s.Phase == NotStarted {
		s.Phase = InProgress
		s.Timer.Start(s.timerMode())
	}
	if len(s.Flipped) == 0 {
		// A new flip cycle: the previous mismatch can no longer be undone.
		s.PendingUndo = nil
	}

	tile.FaceUp = true
	s.Flipped = append(s.Flipped, id)
	if len(s.Flipped) == 2 {
		s.evaluatePair()
	}
	return nil
}

func (s *Session) evaluatePair() {
	s.Moves++
	firstID, secondID := s.Flipped[0], s.Flipped[1]
	first := &s.Board.Tiles[firstID]
	second := &s.Board.Tiles[secondID]

	if first.Symbol == second.Symbol {
		first.Matched = true
		second.Matched = true
		s.MatchedPairs++
		if s.Options.Mode == ScoreMode {
			if s.LastMoveWasMatch {
				s.Score += s.cfg.ComboBonus
			}
			s.Score = min(s.Score, s.cfg.MaxScore)
		}
		s.LastMoveWasMatch = true
		s.Flipped = s.Flipped[:0]
		s.checkEnd()
		return
	}

	s.PendingUndo = &PendingUndo{
		Tiles:       [2]int{firstID, secondID},
		ScoreBefore: s.Score,
		LivesBefore: s.Lives,
	}
	switch s.Options.Mode {
	case ScoreMode:
		s.Score = max(0, s.Score-s.cfg.WrongPairPenalty)
	case LivesMode:
		s.Lives = max(0, s.Lives-1)
	}
	s.LastMoveWasMatch = false
	first.Wrong = true
	second.Wrong = true

	s.evalSeq++
	seq := s.evalSeq
	s.schedule(s.cfg.FlipBackDelayMS, func() { s.resolveMismatch(seq) })
}

// resolveMismatch turns a wrong pair back over once the flip-back delay has
// passed. It does nothing if the pair was already undone.
func (s *Session) resolveMismatch(seq uint64) {
	if seq != s.evalSeq {
		return
	}
	for _, id := range s.Flipped {
		tile := &s.Board.Tiles[id]
		tile.FaceUp = false
		tile.Wrong = false
	}
	s.Flipped = s.Flipped[:0]
	s.checkEnd()
}
