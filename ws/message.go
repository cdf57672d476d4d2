package ws

import (
	"encoding/json"

	"memory-game-solo/records"
)

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// FlipCardMsg is sent by the client to flip a tile.
type FlipCardMsg struct {
	Type  string `json:"type"`
	Index *int   `json:"index"`
}

// RestartMsg starts a new game. KeepBoard redeals the same symbol order.
type RestartMsg struct {
	Type      string `json:"type"`
	KeepBoard bool   `json:"keepBoard"`
}

type SetDifficultyMsg struct {
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
}

type SetSymbolSetMsg struct {
	Type      string `json:"type"`
	SymbolSet string `json:"symbolSet"`
}

type SetModeMsg struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}

type SetCountdownMsg struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client message cannot be parsed or routed.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RecordsMsg carries the current best records and statistics.
type RecordsMsg struct {
	Type string `json:"type"`
	records.BestRecords
}

func newRecordsMsg(rec records.BestRecords) RecordsMsg {
	return RecordsMsg{Type: "records", BestRecords: rec}
}
