package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/joho/godotenv"

	"memory-game-solo/api"
	"memory-game-solo/config"
	"memory-game-solo/loghandler"
	"memory-game-solo/records"
	"memory-game-solo/storage"
	"memory-game-solo/ws"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, cfg.SlogLevel())))
	if envErr != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}

	slog.Info("configuration", "tag", "main",
		"startingScore", cfg.StartingScore, "penalty", cfg.WrongPairPenalty, "lives", cfg.StartingLives,
		"flipBackMS", cfg.FlipBackDelayMS, "hintMS", cfg.HintRevealMS, "countdown", cfg.CountdownSeconds,
		"difficulty", cfg.DefaultDifficulty, "symbolSet", cfg.DefaultSymbolSet, "mode", cfg.DefaultMode, "port", cfg.WSPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, store := openBackend(ctx, cfg)
	defer store.Close()

	recorder := records.NewRecorder(kv, cfg.RecentScoresLimit)
	if err := recorder.Load(ctx); err != nil {
		slog.Warn("continuing with default records", "tag", "main", "err", err)
	}

	var history storage.HistoryStore
	if store != nil {
		history = store
	}
	hub := ws.NewHub(cfg, quartz.NewReal(), recorder, history)
	go hub.Run(ctx)

	handler := api.NewHandler(recorder, store)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WSPort),
		Handler:           api.NewRouter(handler, hub.ServeWS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "tag", "main", "err", err)
		}
	}()

	slog.Info("memory game server listening", "tag", "main", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "tag", "main", "err", err)
		os.Exit(1)
	}
}

// openBackend picks the records backend: Postgres when DATABASE_URL is set,
// then a JSON file when RECORDS_FILE is set, otherwise memory.
func openBackend(ctx context.Context, cfg *config.Config) (records.KV, *storage.Store) {
	if cfg.DatabaseURL != "" {
		store, err := storage.NewStore(ctx, cfg.DatabaseURL)
		if err == nil {
			return store, store
		}
		slog.Error("connecting to Postgres, falling back", "tag", "main", "err", err)
	}
	if cfg.RecordsFile != "" {
		slog.Info("records stored in file", "tag", "main", "path", cfg.RecordsFile)
		return records.NewFileKV(cfg.RecordsFile), nil
	}
	slog.Info("records kept in memory only", "tag", "main")
	return records.NewMemoryKV(), nil
}
