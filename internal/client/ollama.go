package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"google.golang.org/genai"

	"coda/internal/chat"
	"coda/internal/config"
	"coda/internal/logging"
)

// OllamaClient implements Client against a local or remote Ollama server.
type OllamaClient struct {
	client *api.Client
	model  string
	retry  RetryPolicy
}

// NewOllamaClient creates a new Ollama API client.
func NewOllamaClient(cfg *config.Config) (*OllamaClient, error) {
	baseURL := cfg.API.OllamaBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	if parsed.Scheme == "http" {
		host := parsed.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			logging.Warn("Ollama connection uses unencrypted HTTP to remote host", "host", host)
		}
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	return &OllamaClient{
		client: api.NewClient(parsed, httpClient),
		model:  cfg.Model.Name,
		retry:  PolicyFromConfig(cfg.API.Retry),
	}, nil
}

// Model returns the active model name.
func (c *OllamaClient) Model() string {
	return c.model
}

// Close releases the underlying connection.
func (c *OllamaClient) Close() error {
	return nil
}

// Generate sends the conversation and tool catalog to the model.
func (c *OllamaClient) Generate(ctx context.Context, history []chat.Message, tools []*genai.Tool) (*Response, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(history),
		Stream:   Ptr(false),
	}
	if len(tools) > 0 {
		req.Tools = toOllamaTools(tools)
	}

	var out *Response
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		resp := &Response{}
		err := c.client.Chat(ctx, req, func(r api.ChatResponse) error {
			resp.Text += r.Message.Content
			for i, tc := range r.Message.ToolCalls {
				resp.ToolCalls = append(resp.ToolCalls, fromOllamaToolCall(tc, len(resp.ToolCalls)+i))
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", wrapOllamaError(err))
	}

	logging.Debug("model response",
		"model", c.model,
		"text_len", len(out.Text),
		"tool_calls", len(out.ToolCalls))
	return out, nil
}

func toOllamaMessages(history []chat.Message) []api.Message {
	messages := make([]api.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case chat.RoleSystem:
			messages = append(messages, api.Message{Role: "system", Content: msg.Content})

		case chat.RoleUser:
			messages = append(messages, api.Message{Role: "user", Content: msg.Content})

		case chat.RoleAssistant:
			m := api.Message{Role: "assistant", Content: msg.Content}
			for _, tc := range msg.ToolCalls {
				args := api.NewToolCallFunctionArguments()
				for k, v := range tc.Args {
					args.Set(k, v)
				}
				m.ToolCalls = append(m.ToolCalls, api.ToolCall{
					ID: tc.ID,
					Function: api.ToolCallFunction{
						Name:      tc.Name,
						Arguments: args,
					},
				})
			}
			messages = append(messages, m)

		case chat.RoleTool:
			if msg.ToolOutcome == nil {
				continue
			}
			messages = append(messages, api.Message{
				Role:       "tool",
				Content:    msg.ToolOutcome.Content,
				ToolName:   msg.ToolOutcome.Name,
				ToolCallID: msg.ToolOutcome.CallID,
			})
		}
	}
	return messages
}

// toOllamaTools converts the genai-shaped catalog into Ollama tool format.
func toOllamaTools(tools []*genai.Tool) []api.Tool {
	var out []api.Tool
	for _, tool := range tools {
		for _, decl := range tool.FunctionDeclarations {
			params := api.ToolFunctionParameters{
				Type:       "object",
				Properties: api.NewToolPropertiesMap(),
			}
			if decl.Parameters != nil {
				params.Required = decl.Parameters.Required
				for name, schema := range decl.Parameters.Properties {
					prop := api.ToolProperty{Description: schema.Description}
					if schema.Type != "" {
						prop.Type = api.PropertyType{strings.ToLower(string(schema.Type))}
					}
					if schema.Items != nil && schema.Items.Type != "" {
						prop.Items = map[string]any{
							"type": strings.ToLower(string(schema.Items.Type)),
						}
					}
					params.Properties.Set(name, prop)
				}
			}
			out = append(out, api.Tool{
				Type: "function",
				Function: api.ToolFunction{
					Name:        decl.Name,
					Description: decl.Description,
					Parameters:  params,
				},
			})
		}
	}
	return out
}

func fromOllamaToolCall(tc api.ToolCall, index int) chat.ToolCall {
	id := tc.ID
	if id == "" {
		id = fmt.Sprintf("call_%d", index)
	}
	return chat.ToolCall{
		ID:   id,
		Name: tc.Function.Name,
		Args: tc.Function.Arguments.ToMap(),
	}
}

// wrapOllamaError rewrites common failures into actionable messages.
func wrapOllamaError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return fmt.Errorf("cannot reach Ollama (is the server running?): %w", err)
	case strings.Contains(msg, "not found"):
		return fmt.Errorf("model not installed, try: ollama pull <model>: %w", err)
	}
	return err
}
