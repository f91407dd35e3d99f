// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/wolfman30/support-agent-router/internal/llm"
)

// StubClient replays canned responses. It records every request it receives.
type StubClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Requests  []llm.Request
}

func (s *StubClient) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	if s.Err != nil {
		return llm.Response{}, s.Err
	}
	if len(s.Responses) == 0 {
		return llm.Response{}, nil
	}
	text := s.Responses[0]
	if len(s.Responses) > 1 {
		s.Responses = s.Responses[1:]
	}
	return llm.Response{Text: text}, nil
}

// Calls returns how many completions were requested.
func (s *StubClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
