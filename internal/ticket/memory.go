package ticket

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps tickets in process memory. It backs offline CLI sessions and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]Ticket
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]Ticket)}
}

func (s *MemoryStore) Put(_ context.Context, t *Ticket) error {
	if t == nil {
		return fmt.Errorf("ticket: ticket cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.TicketID]; exists {
		return fmt.Errorf("ticket: %s already exists", t.TicketID)
	}
	s.tickets[t.TicketID] = *t
	return nil
}

func (s *MemoryStore) Get(_ context.Context, ticketID string) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) Cancel(_ context.Context, ticketID, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return ErrNotFound
	}
	t.Status = StatusCancelled
	t.UpdatedAt = timestamp(at)
	if reason != "" {
		t.CancellationReason = reason
	}
	s.tickets[ticketID] = t
	return nil
}
