// Package enrich layers Claude-backed suggestions and analyses on top of the
// local dice engine, falling back to the engine whenever the model is
// disabled, slow, or unhelpful.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cory-johannsen/rollforge/internal/config"
)

var (
	// ErrDisabled reports that enrichment is switched off.
	ErrDisabled = errors.New("enrich: disabled")
	// ErrEmptyReply reports a model reply with no usable text.
	ErrEmptyReply = errors.New("enrich: empty reply")
	// ErrMalformedReply reports a reply that could not be decoded.
	ErrMalformedReply = errors.New("enrich: malformed reply")
	// ErrNoUsableSuggestions reports that every suggested macro was rejected.
	ErrNoUsableSuggestions = errors.New("enrich: no usable suggestions")
)

// MessageClient sends one system and user prompt pair to a language model and
// returns the text of its reply.
//
// Implementations must be safe for concurrent use.
type MessageClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AnthropicClient is a MessageClient backed by the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicClient builds a client from cfg. Extra request options are
// appended after those derived from cfg.
//
// Precondition: cfg.APIKey and cfg.Model must be non-empty.
func NewAnthropicClient(cfg config.AIConfig, opts ...option.RequestOption) *AnthropicClient {
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Timeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.Timeout))
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(append(base, opts...)...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}
}

// Complete implements MessageClient.
//
// Postcondition: Returns the concatenated text blocks of the reply, or
// ErrEmptyReply when there are none.
func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("enrich: anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyReply
	}
	return sb.String(), nil
}
