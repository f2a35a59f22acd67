// Package chat holds the conversation model: role-tagged messages, the
// append-only history and its persistence.
package chat

import (
	ctxbuild "coda/internal/context"
)

// Role tags a message with its speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolOutcome is the recorded outcome of one tool call, correlated to its
// originating call by CallID.
type ToolOutcome struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

// Message is one entry in the conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tools.
	ToolCalls []ToolCall

	// ToolOutcome is set on tool messages.
	ToolOutcome *ToolOutcome
}

// Tokens estimates the message's token cost.
func (m Message) Tokens() int {
	total := ctxbuild.EstimateTokens(m.Content)
	for _, tc := range m.ToolCalls {
		total += ctxbuild.EstimateTokens(tc.Name) + 16
	}
	if m.ToolOutcome != nil {
		total += ctxbuild.EstimateTokens(m.ToolOutcome.Content)
	}
	return total
}

// History is the ordered conversation record. Messages are only appended or
// trimmed from the front; they are never reordered.
type History struct {
	messages []Message
}

// NewHistory creates an empty history, optionally seeded with a system
// message.
func NewHistory(systemPrompt string) *History {
	h := &History{}
	if systemPrompt != "" {
		h.messages = append(h.messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	return h
}

// Append adds a message at the end.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
}

// Messages returns a copy of the conversation.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int {
	return len(h.messages)
}

// Tokens estimates the total token cost of the history.
func (h *History) Tokens() int {
	total := 0
	for _, m := range h.messages {
		total += m.Tokens()
	}
	return total
}

// Clear drops everything except the system message.
func (h *History) Clear() {
	if len(h.messages) > 0 && h.messages[0].Role == RoleSystem {
		h.messages = h.messages[:1]
		return
	}
	h.messages = nil
}

// Trim drops the oldest non-system messages until the estimated token total
// fits maxTokens. Tool messages orphaned at the new front (their originating
// call trimmed away) are dropped too, so the remaining sequence stays
// well-formed.
func (h *History) Trim(maxTokens int) {
	if maxTokens <= 0 {
		return
	}

	start := 0
	keepSystem := len(h.messages) > 0 && h.messages[0].Role == RoleSystem
	if keepSystem {
		start = 1
	}

	total := h.Tokens()
	for total > maxTokens && start < len(h.messages)-1 {
		total -= h.messages[start].Tokens()
		h.messages = append(h.messages[:start], h.messages[start+1:]...)
	}

	for start < len(h.messages) && h.messages[start].Role == RoleTool {
		h.messages = append(h.messages[:start], h.messages[start+1:]...)
	}
}
