package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all configurable game parameters.
type Config struct {
	StartingScore     int `json:"starting_score"`
	MaxScore          int `json:"max_score"`
	WrongPairPenalty  int `json:"wrong_pair_penalty"`
	StartingLives     int `json:"starting_lives"`
	ComboBonus        int `json:"combo_bonus"`
	FlipBackDelayMS   int `json:"flip_back_delay_ms"`
	HintRevealMS      int `json:"hint_reveal_ms"`
	CountdownSeconds  int `json:"countdown_seconds"`
	ReadyStepMS       int `json:"ready_step_ms"` // 0 disables the "3, 2, 1, Go!" countdown
	RecentScoresLimit int `json:"recent_scores_limit"`

	// Options applied to a new session before the player changes them.
	DefaultDifficulty string `json:"default_difficulty"`
	DefaultSymbolSet  string `json:"default_symbol_set"`
	DefaultMode       string `json:"default_mode"`
	DefaultCountdown  bool   `json:"default_countdown"`

	WSPort int `json:"ws_port"`

	// DatabaseURL selects the Postgres records backend when set.
	DatabaseURL string `json:"database_url"`
	// RecordsFile selects the JSON file records backend when DatabaseURL is empty.
	RecordsFile string `json:"records_file"`

	LogLevel string `json:"log_level"`
}

// Defaults returns a Config with the standard game rules.
func Defaults() *Config {
	return &Config{
		StartingScore:     100,
		MaxScore:          100,
		WrongPairPenalty:  4,
		StartingLives:     3,
		ComboBonus:        5,
		FlipBackDelayMS:   800,
		HintRevealMS:      1500,
		CountdownSeconds:  60,
		ReadyStepMS:       800,
		RecentScoresLimit: 5,
		DefaultDifficulty: "medium",
		DefaultSymbolSet:  "greek",
		DefaultMode:       "score",
		DefaultCountdown:  false,
		WSPort:            8080,
		LogLevel:          "info",
	}
}

// Validate reports the first setting that cannot produce a playable game.
func (c *Config) Validate() error {
	switch {
	case c.MaxScore <= 0:
		return fmt.Errorf("max_score must be positive, got %d", c.MaxScore)
	case c.StartingScore <= 0 || c.StartingScore > c.MaxScore:
		return fmt.Errorf("starting_score must be in (0, %d], got %d", c.MaxScore, c.StartingScore)
	case c.StartingLives <= 0:
		return fmt.Errorf("starting_lives must be positive, got %d", c.StartingLives)
	case c.WrongPairPenalty < 0:
		return fmt.Errorf("wrong_pair_penalty must not be negative, got %d", c.WrongPairPenalty)
	case c.ComboBonus < 0:
		return fmt.Errorf("combo_bonus must not be negative, got %d", c.ComboBonus)
	case c.CountdownSeconds <= 0:
		return fmt.Errorf("countdown_seconds must be positive, got %d", c.CountdownSeconds)
	case c.FlipBackDelayMS < 0 || c.HintRevealMS < 0 || c.ReadyStepMS < 0:
		return fmt.Errorf("delays must not be negative")
	case c.RecentScoresLimit <= 0:
		return fmt.Errorf("recent_scores_limit must be positive, got %d", c.RecentScoresLimit)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values. A configuration
// that fails Validate is discarded in favour of the defaults.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "err", err)
		}
	}

	overrideInt(&cfg.StartingScore, "STARTING_SCORE")
	overrideInt(&cfg.MaxScore, "MAX_SCORE")
	overrideInt(&cfg.WrongPairPenalty, "WRONG_PAIR_PENALTY")
	overrideInt(&cfg.StartingLives, "STARTING_LIVES")
	overrideInt(&cfg.ComboBonus, "COMBO_BONUS")
	overrideInt(&cfg.FlipBackDelayMS, "FLIP_BACK_DELAY_MS")
	overrideInt(&cfg.HintRevealMS, "HINT_REVEAL_MS")
	overrideInt(&cfg.CountdownSeconds, "COUNTDOWN_SECONDS")
	overrideInt(&cfg.ReadyStepMS, "READY_STEP_MS")
	overrideInt(&cfg.RecentScoresLimit, "RECENT_SCORES_LIMIT")
	overrideString(&cfg.DefaultDifficulty, "DEFAULT_DIFFICULTY")
	overrideString(&cfg.DefaultSymbolSet, "DEFAULT_SYMBOL_SET")
	overrideString(&cfg.DefaultMode, "DEFAULT_MODE")
	overrideBool(&cfg.DefaultCountdown, "DEFAULT_COUNTDOWN")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.RecordsFile, "RECORDS_FILE")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")

	if err := cfg.Validate(); err != nil {
		slog.Warn("invalid configuration, using defaults", "tag", "config", "err", err)
		def := Defaults()
		def.WSPort = cfg.WSPort
		def.DatabaseURL = cfg.DatabaseURL
		def.RecordsFile = cfg.RecordsFile
		def.LogLevel = cfg.LogLevel
		return def
	}
	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid integer in environment", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*field = b
		} else {
			slog.Warn("invalid boolean in environment", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
