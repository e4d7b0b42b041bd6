package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockProvider is a scripted Provider for tests. Responses and errors are
// consumed in FIFO order; once the script is exhausted every call returns
// the default terminal text.
type MockProvider struct {
	mu       sync.Mutex
	script   []mockTurn
	requests []ChatRequest
	fallback string
}

type mockTurn struct {
	resp *ChatResponse
	err  error
}

// NewMockProvider creates an empty mock that answers "done" by default.
func NewMockProvider() *MockProvider {
	return &MockProvider{fallback: "done"}
}

// SetResponse sets the default terminal text returned after the script runs out.
func (m *MockProvider) SetResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = content
}

// EnqueueText scripts a terminal text response.
func (m *MockProvider) EnqueueText(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockTurn{resp: &ChatResponse{Content: content}})
}

// EnqueueToolCall scripts a single tool-call response with JSON-encoded args.
func (m *MockProvider) EnqueueToolCall(id, name string, args map[string]interface{}) {
	raw, _ := json.Marshal(args)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockTurn{resp: &ChatResponse{
		ToolCalls: []ToolCall{{ID: id, Name: name, Args: string(raw)}},
	}})
}

// EnqueueRawToolCall scripts a tool-call response with a raw argument string,
// for exercising argument-parse failures.
func (m *MockProvider) EnqueueRawToolCall(id, name, rawArgs string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockTurn{resp: &ChatResponse{
		ToolCalls: []ToolCall{{ID: id, Name: name, Args: rawArgs}},
	}})
}

// EnqueueError scripts an error return.
func (m *MockProvider) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockTurn{err: err})
}

// Chat implements Provider.
func (m *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		return &ChatResponse{Content: m.fallback}, nil
	}
	turn := m.script[0]
	m.script = m.script[1:]
	if turn.err != nil {
		return nil, turn.err
	}
	return turn.resp, nil
}

// CallCount returns the number of Chat invocations seen.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or a zero value if none.
func (m *MockProvider) LastRequest() ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// Requests returns a copy of all recorded requests.
func (m *MockProvider) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
