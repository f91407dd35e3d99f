package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/support-agent-router/internal/ticket"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// TicketReader looks up a ticket, returning nil when it is unknown.
type TicketReader interface {
	Get(ctx context.Context, ticketID string) *ticket.Ticket
}

type TicketHandler struct {
	tickets TicketReader
	logger  *logging.Logger
}

func NewTicketHandler(tickets TicketReader, logger *logging.Logger) *TicketHandler {
	if tickets == nil {
		panic("handlers: ticket reader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TicketHandler{tickets: tickets, logger: logger}
}

// Get returns one ticket.
// GET /v1/tickets/{ticketID}
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "ticketID"))
	if id == "" {
		jsonError(w, "missing ticketID", http.StatusBadRequest)
		return
	}
	t := h.tickets.Get(r.Context(), id)
	if t == nil {
		jsonError(w, "ticket not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
