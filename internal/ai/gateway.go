package ai

import (
	"context"
	"strings"
	"time"

	"crm-copilot/backend/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
)

// FallbackReply is returned whenever the completion service fails, so a
// chat turn always completes with some AI message persisted.
const FallbackReply = "Sorry, something went wrong while generating a response."

// GatewayConfig configures the external completion client.
type GatewayConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Gateway sends a system briefing plus a user utterance to the external
// completion service. Single attempt, no retry; every failure class
// (network error, non-2xx, malformed or empty response, timeout)
// degrades to FallbackReply rather than propagating an error.
type Gateway struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *logger.Logger
}

// NewGateway creates an AI gateway
func NewGateway(cfg GatewayConfig, log *logger.Logger) *Gateway {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Gateway{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		logger:      log,
	}
}

// Generate produces reply text for one chat turn. Never returns an
// error: the fallback string stands in for any upstream failure.
func (g *Gateway) Generate(ctx context.Context, systemBriefing, userMessage string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemBriefing},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		g.logger.LogError(err, "AI completion failed")
		return FallbackReply
	}

	if len(resp.Choices) == 0 {
		g.logger.Warn("AI completion returned no choices")
		return FallbackReply
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		g.logger.Warn("AI completion returned empty content")
		return FallbackReply
	}
	return reply
}
