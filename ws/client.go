package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"memory-game-solo/game"
	"memory-game-solo/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and its game.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Game *game.Game
}

// ReadPump pumps messages from the websocket connection to the game.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read", "tag", "ws", "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	action, ok := c.parseAction(envelope)
	if !ok {
		return
	}
	c.Game.Submit(action)
}

// parseAction maps a client message to a game action. It reports false and
// sends an error to the client when the message cannot be used.
func (c *Client) parseAction(envelope InboundEnvelope) (game.Action, bool) {
	switch envelope.Type {
	case "flip_card":
		var msg FlipCardMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil || msg.Index == nil {
			c.sendError("Invalid flip_card message.")
			return game.Action{}, false
		}
		return game.Action{Type: game.ActionFlipCard, Index: *msg.Index}, true
	case "undo":
		return game.Action{Type: game.ActionUndo}, true
	case "hint":
		return game.Action{Type: game.ActionHint}, true
	case "restart":
		var msg RestartMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			c.sendError("Invalid restart message.")
			return game.Action{}, false
		}
		return game.Action{Type: game.ActionRestart, KeepBoard: msg.KeepBoard}, true
	case "set_difficulty":
		var msg SetDifficultyMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			c.sendError("Invalid set_difficulty message.")
			return game.Action{}, false
		}
		return game.Action{Type: game.ActionSetDifficulty, Value: msg.Difficulty}, true
	case "set_symbol_set":
		var msg SetSymbolSetMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			c.sendError("Invalid set_symbol_set message.")
			return game.Action{}, false
		}
		return game.Action{Type: game.ActionSetSymbolSet, Value: msg.SymbolSet}, true
	case "set_mode":
		var msg SetModeMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			c.sendError("Invalid set_mode message.")
			return game.Action{}, false
		}
		return game.Action{Type: game.ActionSetMode, Value: msg.Mode}, true
	case "set_countdown":
		var msg SetCountdownMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			c.sendError("Invalid set_countdown message.")
			return game.Action{}, false
		}
		return game.Action{Type: game.ActionSetCountdown, Enabled: msg.Enabled}, true
	default:
		c.sendError("Unknown message type: " + envelope.Type)
		return game.Action{}, false
	}
}

func (c *Client) sendError(message string) {
	data, err := json.Marshal(ErrorMsg{Type: "error", Message: message})
	if err != nil {
		return
	}
	wsutil.SafeSend(c.Send, data)
}
