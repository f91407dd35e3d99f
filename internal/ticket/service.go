package ticket

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// CreateParams describes a new ticket. Empty priority defaults to medium.
type CreateParams struct {
	Subject     string
	Description string
	UserID      string
	AssignedTo  string
	Priority    string
	Emergency   bool
}

// Service wraps a Store and converts store failures into nil/false results.
type Service struct {
	store  Store
	logger *logging.Logger
	now    func() time.Time
	newID  func() string
}

// NewService builds the ticket operations over store.
func NewService(store Store, logger *logging.Logger) *Service {
	if store == nil {
		panic("ticket: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create persists a new open ticket and returns it, or nil when the store fails.
func (s *Service) Create(ctx context.Context, p CreateParams) *Ticket {
	stamp := timestamp(s.now())
	t := &Ticket{
		TicketID:    s.newID(),
		Subject:     p.Subject,
		Description: p.Description,
		UserID:      p.UserID,
		AssignedTo:  strings.TrimSpace(p.AssignedTo),
		Status:      StatusOpen,
		Priority:    ParsePriority(p.Priority),
		Emergency:   p.Emergency,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
	if err := s.store.Put(ctx, t); err != nil {
		s.logger.Error("failed to create ticket", "error", err, "user_id", p.UserID)
		return nil
	}
	s.logger.Info("ticket created", "ticket_id", t.TicketID, "priority", t.Priority)
	return t
}

// Get returns the ticket or nil when it is absent or the store fails.
func (s *Service) Get(ctx context.Context, ticketID string) *Ticket {
	t, err := s.store.Get(ctx, ticketID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to fetch ticket", "error", err, "ticket_id", ticketID)
		}
		return nil
	}
	return t
}

// Cancel marks the ticket cancelled. It reports false for unknown ids and store failures.
func (s *Service) Cancel(ctx context.Context, ticketID, reason string) bool {
	err := s.store.Cancel(ctx, ticketID, strings.TrimSpace(reason), s.now())
	switch {
	case err == nil:
		s.logger.Info("ticket cancelled", "ticket_id", ticketID)
		return true
	case errors.Is(err, ErrNotFound):
		s.logger.Warn("cancel requested for unknown ticket", "ticket_id", ticketID)
		return false
	default:
		s.logger.Error("failed to cancel ticket", "error", err, "ticket_id", ticketID)
		return false
	}
}
