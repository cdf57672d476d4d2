package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"memory-game-solo/config"
	"memory-game-solo/gameerrors"
)

// Mode selects how mistakes are punished.
type Mode int

const (
	ScoreMode Mode = iota
	LivesMode
)

// String returns the protocol string for a Mode.
func (m Mode) String() string {
	switch m {
	case ScoreMode:
		return "score"
	case LivesMode:
		return "lives"
	default:
		return "unknown"
	}
}

// ParseMode maps a protocol string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "score":
		return ScoreMode, true
	case "lives":
		return LivesMode, true
	default:
		return ScoreMode, false
	}
}

// Phase is the lifecycle state of a session.
type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Won
	Lost
)

// String returns the protocol string for a Phase.
func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further play is accepted.
func (p Phase) Terminal() bool {
	return p == Won || p == Lost
}

// readySteps are shown one per ReadyStepMS before flips are accepted.
var readySteps = []string{"3", "2", "1", "Go!"}

// Options are the player-selectable settings of a session.
type Options struct {
	Difficulty Difficulty
	SymbolSet  string
	Mode       Mode
	// Countdown is read when the timer starts, so toggling it mid-game
	// takes effect on the next game.
	Countdown bool
}

// DefaultOptions builds Options from the configured defaults.
func DefaultOptions(cfg *config.Config) Options {
	d, _ := ParseDifficulty(cfg.DefaultDifficulty)
	m, _ := ParseMode(cfg.DefaultMode)
	set := cfg.DefaultSymbolSet
	if !IsSymbolSet(set) {
		set = DefaultSymbolSet
	}
	return Options{Difficulty: d, SymbolSet: set, Mode: m, Countdown: cfg.DefaultCountdown}
}

// PendingUndo is the snapshot taken just before a mismatch penalty.
type PendingUndo struct {
	Tiles       [2]int
	ScoreBefore int
	LivesBefore int
}

// Outcome is what a finished session hands to the stats recorder.
type Outcome struct {
	Result     Phase
	Mode       Mode
	Difficulty Difficulty
	Score      int
	Moves      int
	TimeTaken  int
}

// Session is the single-player game state machine.
// It is not safe for concurrent use; all calls, including the callbacks it
// hands to its Scheduler, must run on one timeline.
type Session struct {
	cfg   *config.Config
	sched Scheduler
	rng   *rand.Rand

	// generation increments on every restart; delayed callbacks from an
	// older generation are dropped.
	generation uint64
	// evalSeq identifies the mismatch whose revert is scheduled.
	evalSeq uint64
	ready   bool

	Options Options
	Board   *Board
	Timer   *Timer

	Phase            Phase
	Score            int
	Lives            int
	Moves            int
	MatchedPairs     int
	Flipped          []int
	LastMoveWasMatch bool
	HintUsed         bool
	UndoUsed         bool
	PendingUndo      *PendingUndo
	// ReadyStep is the countdown label currently shown, empty once play may begin.
	ReadyStep string
	TimeTaken int

	// OnEnd is called once when the session reaches Won or Lost.
	OnEnd func(Outcome)
}

// NewSession deals a fresh board and starts the ready countdown.
// A nil rng uses the global math/rand source.
func NewSession(cfg *config.Config, sched Scheduler, rng *rand.Rand, opts Options) *Session {
	s := &Session{
		cfg:     cfg,
		sched:   sched,
		rng:     rng,
		Options: opts,
		Timer:   NewTimer(sched, cfg.CountdownSeconds),
		Flipped: make([]int, 0, 2),
	}
	s.Timer.OnExpire = s.handleTimeExpired
	s.Restart(false)
	return s
}

// Restart re-initializes all session state. With keepBoard the current
// symbol order is redealt; otherwise a new shuffle is made.
func (s *Session) Restart(keepBoard bool) {
	s.generation++
	s.evalSeq++

	if keepBoard && s.Board != nil && len(s.Board.Deck) > 0 {
		s.Board = NewBoard(s.Board.Deck, s.Board.Cols)
	} else {
		s.Board = NewBoard(BuildDeck(s.Options.Difficulty, s.Options.SymbolSet, s.rng), Columns(s.Options.Difficulty))
	}

	s.Phase = NotStarted
	s.Score = s.cfg.StartingScore
	s.Lives = s.cfg.StartingLives
	s.Moves = 0
	s.MatchedPairs = 0
	s.Flipped = s.Flipped[:0]
	s.LastMoveWasMatch = false
	s.HintUsed = false
	s.UndoUsed = false
	s.PendingUndo = nil
	s.TimeTaken = 0
	s.Timer.Reset(s.timerMode())

	s.startReadyCountdown()
}

// Generation returns the current restart generation.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Ready reports whether the ready countdown has finished.
func (s *Session) Ready() bool {
	return s.ready
}

// SetDifficulty changes the difficulty and deals a new board.
func (s *Session) SetDifficulty(d Difficulty) {
	s.Options.Difficulty = d
	s.Restart(false)
}

// SetSymbolSet changes the symbol catalog and deals a new board.
func (s *Session) SetSymbolSet(id string) error {
	if !IsSymbolSet(id) {
		return fmt.Errorf("%w: unknown symbol set %q", gameerrors.ErrInvalidTransition, id)
	}
	s.Options.SymbolSet = id
	s.Restart(false)
	return nil
}

// SetMode changes between score and lives play and deals a new board.
func (s *Session) SetMode(m Mode) {
	s.Options.Mode = m
	s.Restart(false)
}

// SetCountdownEnabled toggles countdown timing. A game already in progress
// keeps its timer; the new setting is picked up when the timer next starts.
func (s *Session) SetCountdownEnabled(enabled bool) {
	s.Options.Countdown = enabled
	if s.Phase == NotStarted {
		s.Timer.Reset(s.timerMode())
	}
}

// Outcome returns the result summary of the session.
func (s *Session) Outcome() Outcome {
	return Outcome{
		Result:     s.Phase,
		Mode:       s.Options.Mode,
		Difficulty: s.Options.Difficulty,
		Score:      s.Score,
		Moves:      s.Moves,
		TimeTaken:  s.TimeTaken,
	}
}

func (s *Session) timerMode() TimerMode {
	if s.Options.Countdown {
		return Countdown
	}
	return Elapsed
}

// schedule runs fn after ms milliseconds unless the session was restarted meanwhile.
func (s *Session) schedule(ms int, fn func()) {
	gen := s.generation
	s.sched.After(time.Duration(ms)*time.Millisecond, func() {
		if gen != s.generation {
			return
		}
		fn()
	})
}

func (s *Session) startReadyCountdown() {
	if s.cfg.ReadyStepMS <= 0 {
		s.ReadyStep = ""
		s.ready = true
		return
	}
	s.ready = false
	s.advanceReady(0)
}

func (s *Session) advanceReady(step int) {
	if step >= len(readySteps) {
		s.ReadyStep = ""
		s.ready = true
		return
	}
	s.ReadyStep = readySteps[step]
	s.schedule(s.cfg.ReadyStepMS, func() { s.advanceReady(step + 1) })
}

// checkEnd moves the session to a terminal phase when the board is cleared
// or the player has run out of score or lives.
func (s *Session) checkEnd() {
	if s.Phase.Terminal() {
		return
	}
	if s.MatchedPairs == s.Board.TotalPairs() {
		s.end(Won)
		return
	}
	switch s.Options.Mode {
	case ScoreMode:
		if s.Score <= 0 {
			s.end(Lost)
		}
	case LivesMode:
		if s.Lives <= 0 {
			s.end(Lost)
		}
	}
}

func (s *Session) handleTimeExpired() {
	if s.Phase.Terminal() {
		return
	}
	s.end(Lost)
}

func (s *Session) end(result Phase) {
	s.Phase = result
	s.Timer.Stop()
	s.TimeTaken = s.Timer.TimeTaken()
	if s.OnEnd != nil {
		s.OnEnd(s.Outcome())
	}
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", gameerrors.ErrInvalidTransition, reason)
}
