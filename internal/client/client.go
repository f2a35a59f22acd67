// Package client abstracts the remote model providers behind a single
// request/response interface: conversation history and a tool catalog go
// in, either plain text or tool invocation requests come out.
package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"coda/internal/chat"
	"coda/internal/config"
)

// Response is one complete model turn.
type Response struct {
	// Text is the model's plain answer, possibly empty when tools were
	// requested instead.
	Text string

	// ToolCalls are the tool invocations the model requested, in order.
	ToolCalls []chat.ToolCall
}

// Client defines the interface for model interactions.
type Client interface {
	// Generate sends the conversation and tool catalog to the model and
	// returns its next turn. Blocking, bounded by the configured timeout.
	Generate(ctx context.Context, history []chat.Message, tools []*genai.Tool) (*Response, error)

	// Model returns the active model name.
	Model() string

	// Close releases the underlying connection.
	Close() error
}

// New creates a client for the configured provider.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.API.GetActiveProvider() {
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	case "ollama":
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.API.ActiveProvider)
	}
}

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}
