package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sanjanak/grocery-graph/backend/internal/config"
)

// Generator is the language-generation boundary: one prompt in, one response
// text out, synchronous, no streaming. Every LLM-backed component consumes
// this interface so tests can substitute fakes.
type Generator interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

const clientSystemPrompt = "You are the reasoning engine of a grocery spending assistant. " +
	"Follow the instructions in each request exactly and output nothing beyond what is asked for."

// Client implements Generator on top of an eino chat chain.
type Client struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewClient creates the chat model from configuration and compiles the
// generation chain.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(clientSystemPrompt),
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Client{chain: runnable}, nil
}

// Generate runs one prompt through the chain and returns the trimmed
// response text.
func (c *Client) Generate(ctx context.Context, promptText string) (string, error) {
	response, err := c.chain.Invoke(ctx, map[string]any{"prompt": promptText})
	if err != nil {
		return "", fmt.Errorf("failed to run generation chain: %w", err)
	}
	if response == nil {
		return "", fmt.Errorf("generation chain returned no message")
	}
	return strings.TrimSpace(response.Content), nil
}
