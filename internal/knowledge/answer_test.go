package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/support-agent-router/internal/llm/llmtest"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

type staticRetriever []DocumentMatch

func (s staticRetriever) Retrieve(context.Context, string) []DocumentMatch { return s }

func TestAnswerWithoutDocumentsSkipsModel(t *testing.T) {
	stub := &llmtest.StubClient{Responses: []string{"should not be used"}}
	s := NewSynthesizer(staticRetriever(nil), stub, "m", 0, logging.Discard())

	resp := s.Answer(context.Background(), "What is the meaning of life?")

	require.NotNil(t, resp.Answer)
	assert.Equal(t, NoMatchesAnswer, *resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, stub.Calls())
}

func TestAnswerReturnPolicyScenario(t *testing.T) {
	f := &fakeS3{
		pages: [][]string{{"knowledge_base/returns.md", "knowledge_base/shipping.md"}},
		bodies: map[string]string{
			"knowledge_base/returns.md":  "Return policy? Items can be returned within 30 days.",
			"knowledge_base/shipping.md": "Orders ship in two days.",
		},
	}
	retriever := newRetriever(f, 3, nil)
	docs := retriever.Retrieve(context.Background(), "What is your return policy?")
	require.Len(t, docs, 1)
	require.Equal(t, 2, docs[0].Relevance)

	stub := &llmtest.StubClient{Responses: []string{"You can return items within 30 days."}}
	s := NewSynthesizer(retriever, stub, "m", 500, logging.Discard())

	resp := s.Answer(context.Background(), "What is your return policy?")

	require.NotNil(t, resp.Answer)
	assert.Equal(t, "You can return items within 30 days.", *resp.Answer)
	assert.Equal(t, []string{"knowledge_base/returns.md"}, resp.Sources)
	require.Equal(t, 1, stub.Calls())
	prompt := stub.Requests[0].Messages[0].Content
	assert.Contains(t, prompt, "Document from knowledge_base/returns.md:\nReturn policy?")
	assert.Contains(t, prompt, InsufficientInfoPhrase)
	assert.Contains(t, prompt, "QUESTION: What is your return policy?")
	assert.EqualValues(t, 500, stub.Requests[0].MaxTokens)
}

func TestAnswerModelFailure(t *testing.T) {
	docs := staticRetriever{{Content: "Hours are 9-5", Source: "kb/hours.txt", Relevance: 1}}
	s := NewSynthesizer(docs, &llmtest.StubClient{Err: errors.New("throttled")}, "m", 0, logging.Discard())

	resp := s.Answer(context.Background(), "hours")

	require.NotNil(t, resp.Answer)
	assert.Equal(t, errorAnswer, *resp.Answer)
	assert.Empty(t, resp.Sources)
}
