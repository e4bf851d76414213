package decision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatModel(t *testing.T) {
	ctx := context.Background()

	for _, cfg := range []ModelConfig{
		{Provider: ProviderOpenAI, BaseURL: "http://localhost:11434/v1", Model: "llama3.1", APIKey: "unused"},
		{Provider: ProviderClaude, Model: "claude-3-5-haiku-latest", APIKey: "test-key"},
	} {
		m, err := NewChatModel(ctx, cfg)
		require.NoError(t, err, cfg.Provider)
		assert.NotNil(t, m, cfg.Provider)
		assert.NotNil(t, NewLLM(m, 0, nil), cfg.Provider)
	}

	_, err := NewChatModel(ctx, ModelConfig{Provider: "mystery", Model: "x"})
	assert.ErrorContains(t, err, "unknown model provider")
}
