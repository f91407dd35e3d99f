// Package audit publishes a best-effort record of every processed request.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

const eventTypeRequest = "request.processed"

// Event is the audit record written for one request.
type Event struct {
	RequestID string    `json:"request_id"`
	SessionID string    `json:"session_id,omitempty"`
	Status    string    `json:"status"`
	Agent     string    `json:"agent"`
	Blocked   bool      `json:"blocked"`
	At        time.Time `json:"at"`
}

// NewEvent summarizes a gate response.
func NewEvent(requestID string, resp agent.Response, at time.Time) Event {
	blocked := resp.Status == agent.StatusBlockedInput || resp.Status == agent.StatusBlockedOutput
	status := resp.Status
	switch {
	case status != "":
	case resp.Error != "" || (resp.Success != nil && !*resp.Success):
		status = "failed"
	default:
		status = "ok"
	}
	return Event{
		RequestID: requestID,
		SessionID: resp.SessionID,
		Status:    status,
		Agent:     handledBy(resp),
		Blocked:   blocked,
		At:        at.UTC(),
	}
}

// handledBy infers which handler produced resp from the fields it set.
func handledBy(resp agent.Response) string {
	switch resp.Status {
	case agent.StatusBlockedInput, agent.StatusBlockedOutput:
		return "guardrail"
	case agent.StatusEmergencyEscalated, agent.StatusEmergencyIdentified, agent.StatusNotEmergency:
		return "emergency"
	}
	switch {
	case resp.Action != "":
		return "ticketing"
	case resp.Answer != nil:
		return "faq"
	case resp.Reply != nil:
		return "supervisor"
	default:
		return "unknown"
	}
}

type queueClient interface {
	Send(ctx context.Context, eventType, body string) error
}

// Publisher writes events to a queue. A nil *Publisher drops events.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("audit: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// Record publishes ev. Callers usually log and ignore the error.
func (p *Publisher) Record(ctx context.Context, ev Event) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}
	if err := p.queue.Send(ctx, eventTypeRequest, string(body)); err != nil {
		return fmt.Errorf("audit: publish %s: %w", ev.RequestID, err)
	}
	p.logger.Debug("audit event published", "request_id", ev.RequestID, "agent", ev.Agent)
	return nil
}
