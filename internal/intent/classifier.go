// Package intent turns a free-text ticketing request into a structured action.
package intent

import (
	"context"
	"fmt"

	"github.com/wolfman30/support-agent-router/internal/llm"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// Action is the ticket operation a request asks for.
type Action string

const (
	ActionCreateTicket    Action = "create_ticket"
	ActionGetTicketStatus Action = "get_ticket_status"
	ActionCancelTicket    Action = "cancel_ticket"
	ActionUnknown         Action = "unknown"
)

// Intent is the structured descriptor parsed from model output.
type Intent struct {
	Action      Action `json:"action"`
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	TicketID    string `json:"ticket_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Unknown is returned whenever classification fails.
var Unknown = Intent{Action: ActionUnknown}

var intentSchema = llm.MustSchema(`{
  "type": "object",
  "required": ["action"],
  "properties": {
    "action": {"type": "string", "enum": ["create_ticket", "get_ticket_status", "cancel_ticket", "unknown"]},
    "subject": {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]},
    "priority": {"type": ["string", "null"]},
    "assigned_to": {"type": ["string", "null"]},
    "ticket_id": {"type": ["string", "null"]},
    "reason": {"type": ["string", "null"]}
  }
}`)

const promptTemplate = `You are a ticketing system agent. Analyze the following user request and extract the relevant information.
Return a JSON object with one of the following structures.

For ticket creation:
{
    "action": "create_ticket",
    "subject": "brief subject of the ticket",
    "description": "detailed description of the issue",
    "priority": "low|medium|high",
    "assigned_to": "person to assign the ticket to (optional)"
}

For ticket status:
{
    "action": "get_ticket_status",
    "ticket_id": "the ID of the ticket"
}

For ticket cancellation:
{
    "action": "cancel_ticket",
    "ticket_id": "the ID of the ticket",
    "reason": "reason for cancellation (optional)"
}

User request: %s

JSON response:`

// Classifier asks a model for the ticket action behind a request.
type Classifier struct {
	client    llm.Client
	model     string
	maxTokens int32
	logger    *logging.Logger
}

func NewClassifier(client llm.Client, model string, maxTokens int32, logger *logging.Logger) *Classifier {
	if client == nil {
		panic("intent: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{client: client, model: model, maxTokens: maxTokens, logger: logger}
}

// Classify never fails: model errors and unparseable output yield Unknown.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	resp, err := c.client.Complete(ctx, llm.UserPrompt(c.model, fmt.Sprintf(promptTemplate, text), c.maxTokens))
	if err != nil {
		c.logger.Warn("intent classification failed", "error", err)
		return Unknown
	}
	intent, err := Parse(resp.Text)
	if err != nil {
		c.logger.Warn("intent output unparseable", "error", err)
		return Unknown
	}
	return intent
}

// Parse decodes the first-to-last brace object in model output into an Intent.
func Parse(text string) (Intent, error) {
	var out Intent
	if err := llm.DecodeValidated(text, intentSchema, &out); err != nil {
		return Unknown, err
	}
	return out, nil
}
