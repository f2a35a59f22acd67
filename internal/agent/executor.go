// Package agent drives the model/tool loop: it sends the conversation and
// tool catalog to the model, executes any requested tools, feeds results
// back, and repeats until the model answers in plain text or the iteration
// ceiling is hit.
package agent

import (
	"context"
	"fmt"

	"coda/internal/chat"
	"coda/internal/client"
	"coda/internal/config"
	"coda/internal/logging"
	"coda/internal/tools"
)

// previewLen bounds argument and result previews in logs.
const previewLen = 120

// Result is the terminal outcome of one user turn.
type Result struct {
	// Answer is the model's final text. Empty when Exhausted.
	Answer string

	// Exhausted is set when the iteration ceiling was hit before the
	// model produced a plain answer.
	Exhausted bool

	// Iterations is the number of model calls made.
	Iterations int
}

// Executor runs the agentic loop for one conversation. It is single-threaded
// and cooperative: one outstanding model call, at most one tool execution at
// a time, tool calls within a turn dispatched sequentially in request order.
type Executor struct {
	client        client.Client
	registry      *tools.Registry
	maxIterations int
}

// NewExecutor creates an Executor. maxIterations <= 0 selects the default
// ceiling.
func NewExecutor(c client.Client, r *tools.Registry, maxIterations int) *Executor {
	if maxIterations <= 0 {
		maxIterations = config.DefaultMaxIterations
	}
	return &Executor{
		client:        c,
		registry:      r,
		maxIterations: maxIterations,
	}
}

// Run drives the loop over the given history. The history is owned by the
// executor for the duration of the call: assistant turns and tool outcomes
// are appended to it, never reordered. Cancellation is observed between
// iterations and inside blocking calls; it aborts the turn with ctx.Err().
func (e *Executor) Run(ctx context.Context, history *chat.History) (*Result, error) {
	catalog := e.registry.GeminiTools()

	for iteration := 1; iteration <= e.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := e.client.Generate(ctx, history.Messages(), catalog)
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			logging.Debug("turn complete", "iterations", iteration)
			return &Result{Answer: resp.Text, Iterations: iteration}, nil
		}

		history.Append(chat.Message{
			Role:      chat.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		// Dispatch sequentially in the order requested, appending exactly
		// one outcome per call: later tools may depend on filesystem state
		// left by earlier ones.
		for _, call := range resp.ToolCalls {
			history.Append(e.dispatch(ctx, call))
		}
	}

	logging.Warn("iteration ceiling reached", "max_iterations", e.maxIterations)
	return &Result{Exhausted: true, Iterations: e.maxIterations}, nil
}

// dispatch executes one tool call and records its outcome. Failures come
// back as error-carrying outcomes the model can read, never as a Go error.
func (e *Executor) dispatch(ctx context.Context, call chat.ToolCall) chat.Message {
	result := e.registry.Execute(ctx, call.Name, call.Args)

	logging.Info("tool executed",
		"tool", call.Name,
		"call_id", call.ID,
		"args", preview(fmt.Sprintf("%v", call.Args)),
		"success", result.Success,
		"result", preview(result.Text()))

	content := result.Content
	if !result.Success {
		content = result.Error
	}
	return chat.Message{
		Role: chat.RoleTool,
		ToolOutcome: &chat.ToolOutcome{
			CallID:  call.ID,
			Name:    call.Name,
			Content: content,
			IsError: !result.Success,
		},
	}
}

func preview(s string) string {
	if len(s) <= previewLen {
		return s
	}
	return s[:previewLen] + "..."
}
