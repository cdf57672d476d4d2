package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"memory-game-solo/config"
	"memory-game-solo/game"
	"memory-game-solo/records"
	"memory-game-solo/storage"
	"memory-game-solo/wsutil"
)

const persistTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RecordsKeeper is what the Hub needs from the stats recorder.
type RecordsKeeper interface {
	Record(ctx context.Context, o game.Outcome) (records.BestRecords, error)
	Snapshot() records.BestRecords
}

// Hub maintains the set of active clients. Each client plays its own game.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Config     *config.Config
	Clock      quartz.Clock
	Records    RecordsKeeper
	// History is optional; finished games are appended to it when set.
	History storage.HistoryStore
	// NewRand returns the shuffle source for a new game.
	NewRand func() *rand.Rand

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, clock quartz.Clock, rec RecordsKeeper, history storage.HistoryStore) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Config:     cfg,
		Clock:      clock,
		Records:    rec,
		History:    history,
		NewRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		done: make(chan struct{}),
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled (e.g. on server shutdown), Run stops every game and returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "ws")
			for client := range h.Clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "ws", "game", client.Game.ID, "clients", len(h.Clients))
			if h.Records != nil {
				h.send(client, newRecordsMsg(h.Records.Snapshot()))
			}
			go client.Game.Run()

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				h.drop(client)
				slog.Info("client disconnected", "tag", "ws", "game", client.Game.ID, "clients", len(h.Clients))
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.Clients, client)
	close(client.Send)
	g := client.Game
	go g.Submit(game.Action{Type: game.ActionDisconnect})
}

// ServeWS handles WebSocket upgrade requests and creates a new Client with its own game.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "tag", "ws", "err", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	client.Game = h.newGame(client)

	select {
	case h.Register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func (h *Hub) newGame(client *Client) *game.Game {
	var rng *rand.Rand
	if h.NewRand != nil {
		rng = h.NewRand()
	}
	g := game.NewGame(uuid.NewString(), h.Config, h.Clock, client.Send, rng, game.DefaultOptions(h.Config))
	g.OnGameEnd = func(sessionID string, o game.Outcome) {
		h.gameEnded(client, sessionID, o)
	}
	return g
}

// gameEnded runs on the game goroutine. gameID identifies the finished
// session and keys its history row.
func (h *Hub) gameEnded(client *Client, gameID string, o game.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if h.History != nil {
		if err := h.History.InsertGameResult(ctx, gameID, o); err != nil {
			slog.Error("storing game result", "tag", "ws", "game", gameID, "err", err)
		}
	}
	if h.Records == nil {
		return
	}
	rec, err := h.Records.Record(ctx, o)
	if err != nil {
		slog.Warn("recording outcome", "tag", "ws", "game", gameID, "err", err)
	}
	h.send(client, newRecordsMsg(rec))
}

func (h *Hub) send(client *Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling message", "tag", "ws", "err", err)
		return
	}
	wsutil.SafeSend(client.Send, data)
}
