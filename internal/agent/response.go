// Package agent defines the response shape shared by every handler in the pipeline.
package agent

import "github.com/wolfman30/support-agent-router/internal/ticket"

// Status values carried by emergency and guardrail responses.
const (
	StatusEmergencyEscalated  = "emergency_escalated"
	StatusEmergencyIdentified = "emergency_identified"
	StatusNotEmergency        = "not_emergency"
	StatusBlockedInput        = "blocked_by_guardrails"
	StatusBlockedOutput       = "output_blocked_by_guardrails"
)

// Response is the normalized result of a routed request. Text fields are
// pointers so an empty string can be told apart from an absent field.
type Response struct {
	Status string `json:"status,omitempty"`
	Action string `json:"action,omitempty"`

	Message          *string `json:"message,omitempty"`
	Answer           *string `json:"answer,omitempty"`
	Reply            *string `json:"response,omitempty"`
	FilteredResponse *string `json:"filtered_response,omitempty"`

	Success  *bool          `json:"success,omitempty"`
	Ticket   *ticket.Ticket `json:"ticket,omitempty"`
	TicketID string         `json:"ticket_id,omitempty"`

	Actions   []string `json:"actions,omitempty"`
	Severity  string   `json:"severity,omitempty"`
	Reasoning *string  `json:"reasoning,omitempty"`
	Sources   []string `json:"sources,omitempty"`

	Error          string   `json:"error,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
	BlockedReasons []string `json:"blocked_reasons,omitempty"`
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Failure builds the structured failure result handlers return instead of an error.
func Failure(action, reason string) Response {
	return Response{Action: action, Success: Bool(false), Error: reason}
}
