// Package llm wraps model invocation behind a narrow text-in/text-out client.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxTokens caps sub-agent completions.
const DefaultMaxTokens int32 = 1000

// Message is a single conversational turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type Response struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// Client completes a prompt. Implementations make a single attempt.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// UserPrompt builds a single-turn request with no sampling overrides.
func UserPrompt(model, prompt string, maxTokens int32) Request {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return Request{
		Model:       model,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: -1,
	}
}
