package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"coda/internal/chat"
	"coda/internal/config"
	"coda/internal/logging"
)

// GeminiClient wraps the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	retry   RetryPolicy
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.API.GeminiKey == "" {
		return nil, config.ErrMissingAuth
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.API.GeminiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model.Name,
		timeout: cfg.API.Timeout,
		retry:   PolicyFromConfig(cfg.API.Retry),
	}, nil
}

// Model returns the active model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return nil
}

// Generate sends the conversation and tool catalog to the model.
func (c *GeminiClient) Generate(ctx context.Context, history []chat.Message, tools []*genai.Tool) (*Response, error) {
	contents, system := toContents(history)

	genConfig := &genai.GenerateContentConfig{}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(tools) > 0 {
		genConfig.Tools = tools
	}

	var resp *genai.GenerateContentResponse
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		r, err := c.client.Models.GenerateContent(callCtx, c.model, contents, genConfig)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	out := &Response{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		id := fc.ID
		if id == "" {
			// The API may omit call ids; mint one so results stay
			// correlated 1:1 with their calls.
			id = uuid.NewString()
		}
		out.ToolCalls = append(out.ToolCalls, chat.ToolCall{
			ID:   id,
			Name: fc.Name,
			Args: fc.Args,
		})
	}

	logging.Debug("model response",
		"model", c.model,
		"text_len", len(out.Text),
		"tool_calls", len(out.ToolCalls))
	return out, nil
}

// toContents converts the conversation into API contents, pulling the
// system message out into a separate instruction.
func toContents(history []chat.Message) (contents []*genai.Content, system string) {
	for _, msg := range history {
		switch msg.Role {
		case chat.RoleSystem:
			system = msg.Content

		case chat.RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))

		case chat.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   tc.ID,
						Name: tc.Name,
						Args: tc.Args,
					},
				})
			}
			if len(parts) == 0 {
				parts = append(parts, genai.NewPartFromText(" "))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))

		case chat.RoleTool:
			if msg.ToolOutcome == nil {
				continue
			}
			response := map[string]any{"content": msg.ToolOutcome.Content}
			if msg.ToolOutcome.IsError {
				response = map[string]any{"error": msg.ToolOutcome.Content}
			}
			part := genai.NewPartFromFunctionResponse(msg.ToolOutcome.Name, response)
			part.FunctionResponse.ID = msg.ToolOutcome.CallID
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		}
	}
	return contents, system
}
