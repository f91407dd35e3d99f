// Package ticket persists support tickets and exposes the create, status and cancel operations.
package ticket

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCancelled Status = "cancelled"
)

// Priority ranks a ticket for triage.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes a free-form priority, falling back to medium.
func ParsePriority(raw string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityMedium
	}
}

// ErrNotFound indicates no ticket exists for the requested id.
var ErrNotFound = errors.New("ticket: not found")

// Ticket is the persisted support record. TicketID never changes after creation.
type Ticket struct {
	TicketID           string   `dynamodbav:"ticket_id" json:"ticket_id"`
	Subject            string   `dynamodbav:"subject" json:"subject"`
	Description        string   `dynamodbav:"description" json:"description"`
	UserID             string   `dynamodbav:"user_id" json:"user_id"`
	AssignedTo         string   `dynamodbav:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	Status             Status   `dynamodbav:"status" json:"status"`
	Priority           Priority `dynamodbav:"priority" json:"priority"`
	Emergency          bool     `dynamodbav:"emergency" json:"emergency"`
	CreatedAt          string   `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt          string   `dynamodbav:"updated_at" json:"updated_at"`
	CancellationReason string   `dynamodbav:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
}

// Store is the durable record store behind the ticket service.
type Store interface {
	Put(ctx context.Context, t *Ticket) error
	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, ticketID string) (*Ticket, error)
	// Cancel returns ErrNotFound when the id is unknown. An empty reason leaves
	// any stored cancellation reason untouched.
	Cancel(ctx context.Context, ticketID, reason string, at time.Time) error
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
