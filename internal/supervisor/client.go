// Package supervisor invokes the Bedrock supervisor agent that proposes a routing decision.
package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/google/uuid"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

type agentAPI interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

// chunkStream is the part of the InvokeAgent event stream the client reads.
type chunkStream interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

type invokeFunc func(ctx context.Context, in *bedrockagentruntime.InvokeAgentInput) (sessionID string, stream chunkStream, err error)

// Reply is the supervisor's answer split into the fragments it streamed.
type Reply struct {
	Fragments []string
	SessionID string
}

// Text returns the first fragment, or "" when the reply was empty.
func (r Reply) Text() string {
	if len(r.Fragments) == 0 {
		return ""
	}
	return r.Fragments[0]
}

// BedrockAgentClient calls a pre-configured Bedrock agent alias.
type BedrockAgentClient struct {
	agentID string
	aliasID string
	invoke  invokeFunc
	logger  *logging.Logger
}

// NewBedrockAgentClient panics when the agent identifiers are missing.
func NewBedrockAgentClient(api agentAPI, agentID, aliasID string, logger *logging.Logger) *BedrockAgentClient {
	if api == nil {
		panic("supervisor: bedrock agent runtime client cannot be nil")
	}
	return newClient(sdkInvoker(api), agentID, aliasID, logger)
}

func newClient(invoke invokeFunc, agentID, aliasID string, logger *logging.Logger) *BedrockAgentClient {
	if strings.TrimSpace(agentID) == "" || strings.TrimSpace(aliasID) == "" {
		panic("supervisor: agent id and alias id are required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BedrockAgentClient{agentID: agentID, aliasID: aliasID, invoke: invoke, logger: logger}
}

func sdkInvoker(api agentAPI) invokeFunc {
	return func(ctx context.Context, in *bedrockagentruntime.InvokeAgentInput) (string, chunkStream, error) {
		out, err := api.InvokeAgent(ctx, in)
		if err != nil {
			return "", nil, err
		}
		if out == nil {
			return "", nil, errors.New("supervisor: empty invoke response")
		}
		var stream chunkStream
		if s := out.GetStream(); s != nil {
			stream = s
		}
		return aws.ToString(out.SessionId), stream, nil
	}
}

// Invoke sends text to the supervisor. An empty sessionID starts a new session.
func (c *BedrockAgentClient) Invoke(ctx context.Context, text, sessionID string) (Reply, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	returnedID, stream, err := c.invoke(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(c.agentID),
		AgentAliasId: aws.String(c.aliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(text),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("supervisor: invoke agent: %w", err)
	}
	if returnedID != "" {
		sessionID = returnedID
	}

	reply := Reply{SessionID: sessionID}
	if stream == nil {
		return reply, nil
	}
	defer stream.Close()

	for event := range stream.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok || len(chunk.Value.Bytes) == 0 {
			continue
		}
		reply.Fragments = append(reply.Fragments, fragmentText(chunk.Value.Bytes))
	}
	if err := stream.Err(); err != nil {
		return Reply{}, fmt.Errorf("supervisor: read completion: %w", err)
	}
	c.logger.Debug("supervisor replied", "fragments", len(reply.Fragments), "session_id", reply.SessionID)
	return reply, nil
}

// fragmentText unwraps {"content": "..."} chunks and passes plain text through.
func fragmentText(b []byte) string {
	var msg struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(b, &msg); err == nil && msg.Content != nil {
		return *msg.Content
	}
	return string(b)
}
