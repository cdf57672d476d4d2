package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"memory-game-solo/records"
	"memory-game-solo/storage"
)

// RecordsSource is what the handlers need from the stats recorder.
type RecordsSource interface {
	Snapshot() records.BestRecords
}

// HistoryLister lists finished games.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]storage.GameRecord, error)
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Recorder     RecordsSource
	HistoryStore HistoryLister
}

// NewHandler creates a new API handler. historyStore may be nil.
func NewHandler(rec RecordsSource, historyStore HistoryLister) *Handler {
	return &Handler{
		Recorder:     rec,
		HistoryStore: historyStore,
	}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// Records returns the current best records and statistics.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rec := records.Default()
	if h.Recorder != nil {
		rec = h.Recorder.Snapshot()
	}
	writeJSON(w, rec)
}

// History returns recently finished games, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list := []storage.GameRecord{}
	if h.HistoryStore != nil {
		got, err := h.HistoryStore.ListRecent(r.Context(), limit)
		if err != nil {
			slog.Error("listing history", "tag", "api", "err", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		if got != nil {
			list = got
		}
	}
	writeJSON(w, list)
}

// Health reports that the server is up.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "tag", "api", "err", err)
	}
}
