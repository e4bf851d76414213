package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/among-llms/internal/game"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, game.DefaultQuorum, cfg.Quorum)
	assert.Equal(t, ModeCanned, cfg.ModelMode)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"AMONG_HTTP_ADDR":     "127.0.0.1:9000",
		"AMONG_AGENT_COUNT":   "7",
		"AMONG_LOOKBACK":      "4",
		"AMONG_VOTE_DURATION": "90s",
		"AMONG_VOTE_QUORUM":   "0.75",
		"AMONG_DELAY_MIN":     "200ms",
		"AMONG_DELAY_MAX":     "2s",
		"AMONG_TICK":          "500ms",
		"AMONG_MODEL_MODE":    "OpenAI",
		"AMONG_MODEL_NAME":    "gpt-4o-mini",
		"AMONG_MODEL_RETRIES": "5",
		"AMONG_LOG_LEVEL":     "DEBUG",
		"AMONG_LOG_FORMAT":    "json",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, 7, cfg.AgentCount)
	assert.Equal(t, 4, cfg.Lookback)
	assert.Equal(t, 90*time.Second, cfg.VoteDuration)
	assert.InDelta(t, 0.75, cfg.Quorum, 1e-9)
	assert.Equal(t, 200*time.Millisecond, cfg.MinDelay)
	assert.Equal(t, 2*time.Second, cfg.MaxDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Tick)
	assert.Equal(t, ModeOpenAI, cfg.ModelMode)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName)
	assert.Equal(t, 5, cfg.ModelRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unparsable int", map[string]string{"AMONG_AGENT_COUNT": "many"}, "AMONG_AGENT_COUNT"},
		{"too few agents", map[string]string{"AMONG_AGENT_COUNT": "2"}, "at least 3"},
		{"quorum above one", map[string]string{"AMONG_VOTE_QUORUM": "1.5"}, "AMONG_VOTE_QUORUM"},
		{"bad duration", map[string]string{"AMONG_VOTE_DURATION": "ten minutes"}, "AMONG_VOTE_DURATION"},
		{"delays out of order", map[string]string{"AMONG_DELAY_MIN": "5s", "AMONG_DELAY_MAX": "1s"}, "out of order"},
		{"unknown mode", map[string]string{"AMONG_MODEL_MODE": "llama"}, "AMONG_MODEL_MODE"},
		{"hosted mode without model", map[string]string{"AMONG_MODEL_MODE": "claude"}, "AMONG_MODEL_NAME"},
		{"unknown log format", map[string]string{"AMONG_LOG_FORMAT": "xml"}, "AMONG_LOG_FORMAT"},
		{"unknown log level", map[string]string{"AMONG_LOG_LEVEL": "trace"}, "AMONG_LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AMONG_LOOKBACK=6\nAMONG_TICK=250ms\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("AMONG_LOOKBACK")
		os.Unsetenv("AMONG_TICK")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Lookback)
	assert.Equal(t, 250*time.Millisecond, cfg.Tick)
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
