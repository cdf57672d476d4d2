package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/coder/quartz"

	"memory-game-solo/config"
)

const testSeed = 1

type testGame struct {
	*Game
	clock *quartz.Mock
	send  chan []byte
	deck  []string
	ended chan finishedSession
}

type finishedSession struct {
	id      string
	outcome Outcome
}

// createTestGame starts a game loop on a mock clock. The deck is rebuilt
// from the same seed so tests can pick pairs without touching game state.
func createTestGame(t *testing.T, cfg *config.Config, opts Options) *testGame {
	t.Helper()
	clock := quartz.NewMock(t)
	send := make(chan []byte, 100)
	g := NewGame("test-1", cfg, clock, send, rand.New(rand.NewSource(testSeed)), opts)

	tg := &testGame{
		Game:  g,
		clock: clock,
		send:  send,
		deck:  BuildDeck(opts.Difficulty, opts.SymbolSet, rand.New(rand.NewSource(testSeed))),
		ended: make(chan finishedSession, 4),
	}
	g.OnGameEnd = func(id string, o Outcome) { tg.ended <- finishedSession{id: id, outcome: o} }

	go g.Run()
	t.Cleanup(func() {
		g.Submit(Action{Type: ActionDisconnect})
		select {
		case <-g.Done:
		case <-time.After(2 * time.Second):
			t.Error("game loop did not exit")
		}
	})
	return tg
}

// readMessage returns the next message type and raw payload.
func readMessage(t *testing.T, ch chan []byte) (string, []byte) {
	t.Helper()
	select {
	case data := <-ch:
		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			t.Fatalf("invalid message %s: %v", data, err)
		}
		return envelope.Type, data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
		return "", nil
	}
}

func nextState(t *testing.T, ch chan []byte) GameStateMsg {
	t.Helper()
	for {
		msgType, data := readMessage(t, ch)
		if msgType != "game_state" {
			continue
		}
		var state GameStateMsg
		if err := json.Unmarshal(data, &state); err != nil {
			t.Fatalf("decode game_state: %v", err)
		}
		return state
	}
}

func (tg *testGame) flip(t *testing.T, index int) GameStateMsg {
	t.Helper()
	tg.Submit(Action{Type: ActionFlipCard, Index: index})
	return nextState(t, tg.send)
}

// advance fires the next pending timer and returns the state it produced.
func (tg *testGame) advance(t *testing.T) (time.Duration, GameStateMsg) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d, w := tg.clock.AdvanceNext()
	w.MustWait(ctx)
	return d, nextState(t, tg.send)
}

func (tg *testGame) waitEnded(t *testing.T) finishedSession {
	t.Helper()
	select {
	case f := <-tg.ended:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("OnGameEnd was not called")
		return finishedSession{}
	}
}

func deckPairs(deck []string) [][2]int {
	first := make(map[string]int)
	var pairs [][2]int
	for i, symbol := range deck {
		if j, ok := first[symbol]; ok {
			pairs = append(pairs, [2]int{j, i})
			continue
		}
		first[symbol] = i
	}
	return pairs
}

func deckNonPair(deck []string) (int, int) {
	for i := 1; i < len(deck); i++ {
		if deck[i] != deck[0] {
			return 0, i
		}
	}
	return -1, -1
}

func TestGame_BroadcastsInitialState(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())

	state := nextState(t, tg.send)

	if state.GameID != "test-1" {
		t.Errorf("expected gameId test-1, got %q", state.GameID)
	}
	if len(state.Tiles) != 8 || state.Phase != "not_started" || state.Score != 100 {
		t.Errorf("unexpected initial state: tiles=%d phase=%q score=%d", len(state.Tiles), state.Phase, state.Score)
	}
	for _, tile := range state.Tiles {
		if tile.Symbol != "" {
			t.Fatalf("initial state leaked a hidden symbol: %+v", tile)
		}
	}
}

func TestGame_FlipRevealsSymbol(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	state := tg.flip(t, 3)

	if !state.Tiles[3].FaceUp || state.Tiles[3].Symbol != tg.deck[3] {
		t.Errorf("expected tile 3 face up with %q, got %+v", tg.deck[3], state.Tiles[3])
	}
	if state.Phase != "in_progress" {
		t.Errorf("expected in_progress after the first flip, got %q", state.Phase)
	}
}

func TestGame_MismatchRevertsAfterDelay(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	a, b := deckNonPair(tg.deck)
	tg.flip(t, a)
	state := tg.flip(t, b)
	if !state.Tiles[a].Wrong || !state.Tiles[b].Wrong || state.Score != 96 {
		t.Fatalf("expected wrong tiles and score 96, got %+v %+v score=%d", state.Tiles[a], state.Tiles[b], state.Score)
	}

	d, state := tg.advance(t)

	if d != 800*time.Millisecond {
		t.Errorf("expected the revert to be the first timer at 800ms, got %v", d)
	}
	if state.Tiles[a].FaceUp || state.Tiles[b].FaceUp {
		t.Errorf("expected both tiles face down after revert, got %+v %+v", state.Tiles[a], state.Tiles[b])
	}
}

func TestGame_TimerTicksThroughLoop(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	tg.flip(t, 0)
	d, state := tg.advance(t)

	if d != time.Second {
		t.Errorf("expected a one second tick, got %v", d)
	}
	if state.TimeDisplay != "0:01" {
		t.Errorf("expected 0:01 after one tick, got %q", state.TimeDisplay)
	}
}

func TestGame_WinSendsGameOverAndNotifies(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	for _, pair := range deckPairs(tg.deck) {
		tg.flip(t, pair[0])
		tg.flip(t, pair[1])
	}

	msgType, data := readMessage(t, tg.send)
	if msgType != "game_over" {
		t.Fatalf("expected game_over after the final match, got %q", msgType)
	}
	var over GameOverMsg
	if err := json.Unmarshal(data, &over); err != nil {
		t.Fatalf("decode game_over: %v", err)
	}
	if over.Result != "win" || over.Moves != 4 || over.Score == nil || *over.Score != 100 {
		t.Errorf("unexpected game over %+v", over)
	}

	f := tg.waitEnded(t)
	if f.outcome.Result != Won || f.outcome.Difficulty != Easy {
		t.Errorf("unexpected outcome %+v", f.outcome)
	}
	if f.id == "" || f.id == tg.ID {
		t.Errorf("expected a session id distinct from the game id, got %q", f.id)
	}
}

func TestGame_EachSessionReportsItsOwnID(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	var ids []string
	for round := 0; round < 2; round++ {
		for _, pair := range deckPairs(tg.deck) {
			tg.flip(t, pair[0])
			tg.flip(t, pair[1])
		}
		ids = append(ids, tg.waitEnded(t).id)

		tg.Submit(Action{Type: ActionRestart, KeepBoard: true})
		if state := nextState(t, tg.send); state.Phase != "not_started" {
			t.Fatalf("expected a fresh session after restart, got %q", state.Phase)
		}
	}

	if ids[0] == ids[1] {
		t.Errorf("two finished sessions reported the same id %q", ids[0])
	}
}

func TestGame_RejectedActionStillBroadcasts(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	tg.Submit(Action{Type: ActionUndo})
	state := nextState(t, tg.send)
	if state.Moves != 0 || state.Phase != "not_started" {
		t.Errorf("rejected undo changed state: %+v", state)
	}

	tg.Submit(Action{Type: ActionSetDifficulty, Value: "nightmare"})
	state = nextState(t, tg.send)
	if state.Difficulty != "easy" {
		t.Errorf("unknown difficulty should be ignored, got %q", state.Difficulty)
	}
}

func TestGame_OptionActions(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	tg.Submit(Action{Type: ActionSetDifficulty, Value: "hard"})
	state := nextState(t, tg.send)
	if state.Difficulty != "hard" || len(state.Tiles) != 24 || state.Columns != 6 {
		t.Errorf("expected a hard board, got difficulty=%q tiles=%d cols=%d", state.Difficulty, len(state.Tiles), state.Columns)
	}

	tg.Submit(Action{Type: ActionSetMode, Value: "lives"})
	state = nextState(t, tg.send)
	if state.Mode != "lives" || state.Lives != 3 {
		t.Errorf("expected lives mode with 3 lives, got %q/%d", state.Mode, state.Lives)
	}

	tg.Submit(Action{Type: ActionSetCountdown, Enabled: true})
	state = nextState(t, tg.send)
	if !state.Countdown || state.TimeDisplay != "1:00" {
		t.Errorf("expected countdown showing 1:00, got %v/%q", state.Countdown, state.TimeDisplay)
	}

	tg.Submit(Action{Type: ActionSetSymbolSet, Value: "emojis"})
	state = nextState(t, tg.send)
	if state.SymbolSet != "emojis" {
		t.Errorf("expected emojis, got %q", state.SymbolSet)
	}
}

func TestGame_SubmitAfterDisconnect(t *testing.T) {
	tg := createTestGame(t, testConfig(), easyScore())
	nextState(t, tg.send)

	tg.Submit(Action{Type: ActionDisconnect})
	select {
	case <-tg.Done:
	case <-time.After(2 * time.Second):
		t.Fatal("game loop did not exit on disconnect")
	}

	if tg.Submit(Action{Type: ActionFlipCard, Index: 0}) {
		t.Error("Submit should report false once the loop has exited")
	}
}
