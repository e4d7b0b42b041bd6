// Package llm defines the chat provider contract and its adapters.
package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a single conversation message.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a model-issued request to invoke a named tool. Args is the
// raw JSON argument string from the wire; parsing it is the dispatcher's
// concern so a parse failure can be fed back into the conversation.
type ToolCall struct {
	ID   string
	Name string
	Args string
}

// ToolDef is the model-facing definition of one tool.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatRequest carries one full conversation turn to the endpoint.
type ChatRequest struct {
	Messages    []Message
	Tools       []ToolDef
	Temperature float32
	MaxTokens   int
}

// ChatResponse is either terminal text or an ordered list of tool calls.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider is a chat endpoint bound to a single credential.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// IsRateLimit reports whether the error is a transient capacity failure
// that should trigger credential rotation rather than a retry budget hit.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return true
		}
		if code, ok := apiErr.Code.(string); ok && code == "rate_limit_exceeded" {
			return true
		}
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate_limit_exceeded") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsMalformedToolCall reports whether the endpoint rejected the model's
// tool-call encoding (small models emitting XML-style syntax instead of
// the JSON function schema).
func IsMalformedToolCall(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "tool_use_failed" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "tool_use_failed")
}
