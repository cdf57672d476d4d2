package game

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"memory-game-solo/config"
	"memory-game-solo/wsutil"
)

// ActionType enumerates the kinds of actions a game can process.
type ActionType int

const (
	ActionFlipCard ActionType = iota
	ActionUndo
	ActionHint
	ActionRestart
	ActionSetDifficulty
	ActionSetSymbolSet
	ActionSetMode
	ActionSetCountdown
	ActionDisconnect
	ActionScheduled // internal: a delayed session callback is due
)

// String returns a short name for logging.
func (a ActionType) String() string {
	switch a {
	case ActionFlipCard:
		return "flip_card"
	case ActionUndo:
		return "undo"
	case ActionHint:
		return "hint"
	case ActionRestart:
		return "restart"
	case ActionSetDifficulty:
		return "set_difficulty"
	case ActionSetSymbolSet:
		return "set_symbol_set"
	case ActionSetMode:
		return "set_mode"
	case ActionSetCountdown:
		return "set_countdown"
	case ActionDisconnect:
		return "disconnect"
	case ActionScheduled:
		return "scheduled"
	default:
		return "unknown"
	}
}

// Action is a request sent into the game's action channel.
type Action struct {
	Type      ActionType
	Index     int    // tile index (FlipCard)
	KeepBoard bool   // Restart
	Value     string // difficulty, symbol set or mode name
	Enabled   bool   // SetCountdown

	fn func()
}

// Game runs one Session on its own goroutine. Player actions, timer ticks
// and delayed effects are all processed serially from Actions.
type Game struct {
	ID      string
	Session *Session
	Config  *config.Config
	Send    chan []byte
	Actions chan Action
	Done    chan struct{}

	clock    quartz.Clock
	finished *Outcome

	// Each session played on this game gets its own id; sessionGen is the
	// session generation it was minted for.
	sessionID  string
	sessionGen uint64

	// OnGameEnd is called from the game goroutine when a session ends.
	// sessionID is unique per finished session, so restarting on the same
	// Game never reports the same id twice.
	OnGameEnd func(sessionID string, o Outcome)
}

// NewGame creates a Game whose delays are measured on clock.
// State updates are written to send; a nil rng uses the global source.
func NewGame(id string, cfg *config.Config, clock quartz.Clock, send chan []byte, rng *rand.Rand, opts Options) *Game {
	g := &Game{
		ID:      id,
		Config:  cfg,
		Send:    send,
		Actions: make(chan Action, 16),
		Done:    make(chan struct{}),
		clock:   clock,
	}
	g.Session = NewSession(cfg, g, rng, opts)
	g.Session.OnEnd = g.handleSessionEnd
	return g
}

// After implements Scheduler by posting fn back into the action loop.
func (g *Game) After(d time.Duration, fn func()) {
	g.clock.AfterFunc(d, func() {
		select {
		case g.Actions <- Action{Type: ActionScheduled, fn: fn}:
		case <-g.Done:
		}
	})
}

// Submit queues an action unless the game loop has exited.
func (g *Game) Submit(a Action) bool {
	select {
	case <-g.Done:
		return false
	default:
	}
	select {
	case g.Actions <- a:
		return true
	case <-g.Done:
		return false
	}
}

// Run is the main game loop. It processes actions sequentially until a
// disconnect arrives. It should be run as a goroutine.
func (g *Game) Run() {
	defer close(g.Done)

	g.broadcastState()

	for action := range g.Actions {
		if action.Type == ActionDisconnect {
			g.Session.Timer.Stop()
			return
		}
		if err := g.apply(action); err != nil {
			slog.Debug("action rejected", "tag", "game", "game", g.ID, "action", action.Type.String(), "err", err)
		}
		g.broadcastState()
		if g.finished != nil {
			g.broadcastGameOver(*g.finished)
			g.finished = nil
		}
	}
}

func (g *Game) apply(action Action) error {
	s := g.Session
	switch action.Type {
	case ActionFlipCard:
		return s.Flip(action.Index)
	case ActionUndo:
		return s.Undo()
	case ActionHint:
		return s.Hint()
	case ActionRestart:
		s.Restart(action.KeepBoard)
	case ActionSetDifficulty:
		d, ok := ParseDifficulty(action.Value)
		if !ok {
			return invalid("unknown difficulty " + action.Value)
		}
		s.SetDifficulty(d)
	case ActionSetSymbolSet:
		return s.SetSymbolSet(action.Value)
	case ActionSetMode:
		m, ok := ParseMode(action.Value)
		if !ok {
			return invalid("unknown mode " + action.Value)
		}
		s.SetMode(m)
	case ActionSetCountdown:
		s.SetCountdownEnabled(action.Enabled)
	case ActionScheduled:
		if action.fn != nil {
			action.fn()
		}
	}
	return nil
}

// currentSessionID returns the id of the session in play, minting a new one
// after every restart. Only called from the game goroutine.
func (g *Game) currentSessionID() string {
	if gen := g.Session.Generation(); g.sessionID == "" || gen != g.sessionGen {
		g.sessionID = uuid.NewString()
		g.sessionGen = gen
	}
	return g.sessionID
}

func (g *Game) handleSessionEnd(o Outcome) {
	slog.Info("game finished", "tag", "game", "game", g.ID, "session", g.currentSessionID(), "result", o.Result.String(),
		"mode", o.Mode.String(), "difficulty", o.Difficulty.String(), "score", o.Score, "moves", o.Moves, "time", o.TimeTaken)
	g.finished = &o
}

func (g *Game) broadcastState() {
	state := BuildState(g.Session)
	state.GameID = g.ID
	g.send(state)
}

func (g *Game) broadcastGameOver(o Outcome) {
	g.send(BuildGameOver(o))
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.currentSessionID(), o)
	}
}

func (g *Game) send(msg any) {
	if g.Send == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling game message", "tag", "game", "err", err)
		return
	}
	wsutil.SafeSend(g.Send, data)
}
