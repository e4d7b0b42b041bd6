package llm

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"code string", &openai.APIError{Code: "rate_limit_exceeded"}, true},
		{"wrapped 429", fmt.Errorf("request failed: %w", &openai.APIError{HTTPStatusCode: 429}), true},
		{"message substring", errors.New("upstream said: Rate limit reached for model"), true},
		{"too many requests", errors.New("HTTP 429 Too Many Requests"), true},
		{"unrelated", errors.New("connection refused"), false},
		{"auth failure", &openai.APIError{HTTPStatusCode: 401}, false},
	}
	for _, tt := range tests {
		if got := IsRateLimit(tt.err); got != tt.want {
			t.Errorf("%s: IsRateLimit = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsMalformedToolCall(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"code", &openai.APIError{Code: "tool_use_failed"}, true},
		{"wrapped code", fmt.Errorf("request failed: %w", &openai.APIError{Code: "tool_use_failed"}), true},
		{"message substring", errors.New("error code 400: tool_use_failed"), true},
		{"rate limit", &openai.APIError{HTTPStatusCode: 429}, false},
		{"unrelated", errors.New("context deadline exceeded"), false},
	}
	for _, tt := range tests {
		if got := IsMalformedToolCall(tt.err); got != tt.want {
			t.Errorf("%s: IsMalformedToolCall = %v, want %v", tt.name, got, tt.want)
		}
	}
}
