package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/llm"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

const (
	// NoMatchesAnswer is returned without a model call when retrieval finds nothing.
	NoMatchesAnswer = "I couldn't find any relevant information in the knowledge base."
	// InsufficientInfoPhrase is what the model is told to say when the documents lack the answer.
	InsufficientInfoPhrase = "I don't have enough information to answer this question."
	errorAnswer            = "I encountered an error while trying to answer your question."
)

const answerPrompt = `You are a helpful assistant answering questions based on the provided knowledge base.
Use ONLY the information in the following documents to answer the question.
If the documents don't contain the answer, say "%s"

KNOWLEDGE BASE DOCUMENTS:
%s

QUESTION: %s

ANSWER:`

// Retriever finds documents relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) []DocumentMatch
}

// Synthesizer produces grounded answers from retrieved documents.
type Synthesizer struct {
	retriever Retriever
	client    llm.Client
	model     string
	maxTokens int32
	logger    *logging.Logger
}

func NewSynthesizer(retriever Retriever, client llm.Client, model string, maxTokens int32, logger *logging.Logger) *Synthesizer {
	if retriever == nil {
		panic("knowledge: retriever cannot be nil")
	}
	if client == nil {
		panic("knowledge: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Synthesizer{retriever: retriever, client: client, model: model, maxTokens: maxTokens, logger: logger}
}

// Answer returns {answer, sources}. The model is not called when nothing matches.
func (s *Synthesizer) Answer(ctx context.Context, query string) agent.Response {
	docs := s.retriever.Retrieve(ctx, query)
	if len(docs) == 0 {
		return agent.Response{Answer: agent.String(NoMatchesAnswer), Sources: []string{}}
	}

	blocks := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("Document from %s:\n%s", doc.Source, doc.Content))
		sources = append(sources, doc.Source)
	}
	prompt := fmt.Sprintf(answerPrompt, InsufficientInfoPhrase, strings.Join(blocks, "\n\n"), query)

	resp, err := s.client.Complete(ctx, llm.UserPrompt(s.model, prompt, s.maxTokens))
	if err != nil {
		s.logger.Error("failed to generate answer", "error", err)
		return agent.Response{Answer: agent.String(errorAnswer), Sources: []string{}}
	}
	return agent.Response{Answer: agent.String(resp.Text), Sources: sources}
}
