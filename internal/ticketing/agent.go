// Package ticketing maps natural-language ticket requests onto ticket operations.
package ticketing

import (
	"context"
	"strings"

	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/intent"
	"github.com/wolfman30/support-agent-router/internal/ticket"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

const (
	defaultSubject     = "No subject provided"
	defaultDescription = "No description provided"
	errMissingID       = "No ticket ID provided"
	errUnknownAction   = "Could not determine the requested action"
)

// Classifier extracts a ticket intent from text.
type Classifier interface {
	Classify(ctx context.Context, text string) intent.Intent
}

// Operations is the ticket service surface the agent drives.
type Operations interface {
	Create(ctx context.Context, p ticket.CreateParams) *ticket.Ticket
	Get(ctx context.Context, ticketID string) *ticket.Ticket
	Cancel(ctx context.Context, ticketID, reason string) bool
}

// Agent handles requests routed to ticketing.
type Agent struct {
	classifier Classifier
	tickets    Operations
	userID     string
	logger     *logging.Logger
}

// NewAgent builds the ticketing handler. userID is stamped on created tickets.
func NewAgent(classifier Classifier, tickets Operations, userID string, logger *logging.Logger) *Agent {
	if classifier == nil {
		panic("ticketing: classifier cannot be nil")
	}
	if tickets == nil {
		panic("ticketing: ticket operations cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Agent{classifier: classifier, tickets: tickets, userID: userID, logger: logger}
}

// Process classifies text and runs the matching ticket operation.
func (a *Agent) Process(ctx context.Context, text string) agent.Response {
	in := a.classifier.Classify(ctx, text)
	action := string(in.Action)
	a.logger.Debug("ticket intent classified", "action", action)

	switch in.Action {
	case intent.ActionCreateTicket:
		t := a.tickets.Create(ctx, ticket.CreateParams{
			Subject:     orDefault(in.Subject, defaultSubject),
			Description: orDefault(in.Description, defaultDescription),
			UserID:      a.userID,
			AssignedTo:  in.AssignedTo,
			Priority:    in.Priority,
		})
		return agent.Response{Action: action, Success: agent.Bool(t != nil), Ticket: t}

	case intent.ActionGetTicketStatus:
		id := strings.TrimSpace(in.TicketID)
		if id == "" {
			return agent.Failure(action, errMissingID)
		}
		t := a.tickets.Get(ctx, id)
		return agent.Response{Action: action, Success: agent.Bool(t != nil), Ticket: t}

	case intent.ActionCancelTicket:
		id := strings.TrimSpace(in.TicketID)
		if id == "" {
			return agent.Failure(action, errMissingID)
		}
		ok := a.tickets.Cancel(ctx, id, in.Reason)
		return agent.Response{Action: action, Success: agent.Bool(ok), TicketID: id}

	default:
		return agent.Failure(string(intent.ActionUnknown), errUnknownAction)
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
