// Package config loads the server configuration from an optional .env file
// and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aaronzipp/among-llms/internal/game"
)

// Model modes
const (
	ModeCanned = "canned"
	ModeOpenAI = "openai"
	ModeClaude = "claude"
	ModeGemini = "gemini"
)

// Config holds the server configuration
type Config struct {
	// Server settings
	HTTPAddr string

	// Game settings
	AgentCount   int
	Lookback     int
	VoteDuration time.Duration
	Quorum       float64
	MinDelay     time.Duration
	MaxDelay     time.Duration
	Tick         time.Duration

	// Decision provider
	ModelMode    string
	ModelBaseURL string
	ModelName    string
	ModelAPIKey  string
	ModelRetries int

	// Archive
	ArchiveDSN string

	// Logging
	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		HTTPAddr:     ":8080",
		AgentCount:   game.DefaultAgentCount,
		Lookback:     game.DefaultLookback,
		VoteDuration: game.DefaultVoteDuration,
		Quorum:       game.DefaultQuorum,
		MinDelay:     game.DefaultMinDelay,
		MaxDelay:     game.DefaultMaxDelay,
		Tick:         game.DefaultTick,
		ModelMode:    ModeCanned,
		ModelRetries: 3,
		ArchiveDSN:   "file:among.db?cache=shared&mode=rwc",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads files (default ".env" when none are given) and then the
// environment. Missing files are ignored; malformed values are not.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	r := reader{getenv: getenv}

	cfg.HTTPAddr = r.str("AMONG_HTTP_ADDR", cfg.HTTPAddr)
	cfg.AgentCount = r.int("AMONG_AGENT_COUNT", cfg.AgentCount)
	cfg.Lookback = r.int("AMONG_LOOKBACK", cfg.Lookback)
	cfg.VoteDuration = r.duration("AMONG_VOTE_DURATION", cfg.VoteDuration)
	cfg.Quorum = r.float("AMONG_VOTE_QUORUM", cfg.Quorum)
	cfg.MinDelay = r.duration("AMONG_DELAY_MIN", cfg.MinDelay)
	cfg.MaxDelay = r.duration("AMONG_DELAY_MAX", cfg.MaxDelay)
	cfg.Tick = r.duration("AMONG_TICK", cfg.Tick)
	cfg.ModelMode = strings.ToLower(r.str("AMONG_MODEL_MODE", cfg.ModelMode))
	cfg.ModelBaseURL = r.str("AMONG_MODEL_BASE_URL", cfg.ModelBaseURL)
	cfg.ModelName = r.str("AMONG_MODEL_NAME", cfg.ModelName)
	cfg.ModelAPIKey = r.str("AMONG_MODEL_API_KEY", cfg.ModelAPIKey)
	cfg.ModelRetries = r.int("AMONG_MODEL_RETRIES", cfg.ModelRetries)
	cfg.ArchiveDSN = r.str("AMONG_ARCHIVE_DSN", cfg.ArchiveDSN)
	cfg.LogLevel = strings.ToLower(r.str("AMONG_LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(r.str("AMONG_LOG_FORMAT", cfg.LogFormat))

	if err := errors.Join(append(r.errs, cfg.Validate())...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field constraints
func (c Config) Validate() error {
	var errs []error
	if c.AgentCount < game.MinAgents {
		errs = append(errs, fmt.Errorf("AMONG_AGENT_COUNT must be at least %d, got %d", game.MinAgents, c.AgentCount))
	}
	if c.Lookback < 1 {
		errs = append(errs, fmt.Errorf("AMONG_LOOKBACK must be positive, got %d", c.Lookback))
	}
	if c.VoteDuration <= 0 {
		errs = append(errs, fmt.Errorf("AMONG_VOTE_DURATION must be positive, got %s", c.VoteDuration))
	}
	if c.Quorum <= 0 || c.Quorum > 1 {
		errs = append(errs, fmt.Errorf("AMONG_VOTE_QUORUM must be in (0, 1], got %g", c.Quorum))
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		errs = append(errs, fmt.Errorf("AMONG_DELAY_MIN/AMONG_DELAY_MAX out of order: %s > %s", c.MinDelay, c.MaxDelay))
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("AMONG_TICK must be positive, got %s", c.Tick))
	}
	switch c.ModelMode {
	case ModeCanned:
	case ModeOpenAI, ModeClaude, ModeGemini:
		if c.ModelName == "" {
			errs = append(errs, fmt.Errorf("AMONG_MODEL_NAME is required in %s mode", c.ModelMode))
		}
	default:
		errs = append(errs, fmt.Errorf("AMONG_MODEL_MODE must be one of canned, openai, claude, gemini, got %q", c.ModelMode))
	}
	if c.ModelRetries < 1 {
		errs = append(errs, fmt.Errorf("AMONG_MODEL_RETRIES must be positive, got %d", c.ModelRetries))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("AMONG_LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("AMONG_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
