package decision

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// Hosted chat model providers
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// claudeMaxTokens bounds one reply; a decision is a handful of short lines
const claudeMaxTokens = 1024

// ModelConfig selects a hosted chat model
type ModelConfig struct {
	Provider string
	BaseURL  string // empty for the provider's default endpoint
	Model    string
	APIKey   string
}

// NewChatModel builds the chat model named by cfg. The openai provider also
// serves OpenAI-compatible endpoints such as Ollama or OpenRouter.
func NewChatModel(ctx context.Context, cfg ModelConfig) (model.BaseChatModel, error) {
	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch cfg.Provider {
	case ProviderOpenAI:
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
	case ProviderClaude:
		var baseURL *string
		if cfg.BaseURL != "" {
			baseURL = &cfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   baseURL,
			MaxTokens: claudeMaxTokens,
		})
	case ProviderGemini:
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s chat model: %w", cfg.Provider, err)
	}
	return chatModel, nil
}
