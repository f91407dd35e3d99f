package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/support-agent-router/internal/intent"
	"github.com/wolfman30/support-agent-router/internal/ticket"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

type fixedClassifier intent.Intent

func (f fixedClassifier) Classify(context.Context, string) intent.Intent { return intent.Intent(f) }

func newAgent(in intent.Intent, store ticket.Store) *Agent {
	return NewAgent(fixedClassifier(in), ticket.NewService(store, logging.Discard()), "user-42", logging.Discard())
}

func TestProcessCreateAppliesDefaults(t *testing.T) {
	store := ticket.NewMemoryStore()
	a := newAgent(intent.Intent{Action: intent.ActionCreateTicket}, store)

	resp := a.Process(context.Background(), "open a ticket")

	assert.Equal(t, "create_ticket", resp.Action)
	require.NotNil(t, resp.Success)
	assert.True(t, *resp.Success)
	require.NotNil(t, resp.Ticket)
	assert.Equal(t, "No subject provided", resp.Ticket.Subject)
	assert.Equal(t, "No description provided", resp.Ticket.Description)
	assert.Equal(t, ticket.PriorityMedium, resp.Ticket.Priority)
	assert.Equal(t, "user-42", resp.Ticket.UserID)
	assert.False(t, resp.Ticket.Emergency)
	assert.Equal(t, ticket.StatusOpen, resp.Ticket.Status)
}

func TestProcessStatusAndCancel(t *testing.T) {
	store := ticket.NewMemoryStore()
	svc := ticket.NewService(store, logging.Discard())
	created := svc.Create(context.Background(), ticket.CreateParams{Subject: "VPN", Priority: "high"})
	require.NotNil(t, created)

	status := NewAgent(fixedClassifier{Action: intent.ActionGetTicketStatus, TicketID: created.TicketID}, svc, "u", logging.Discard()).
		Process(context.Background(), "status?")
	require.NotNil(t, status.Ticket)
	assert.True(t, *status.Success)
	assert.Equal(t, "VPN", status.Ticket.Subject)

	cancel := NewAgent(fixedClassifier{Action: intent.ActionCancelTicket, TicketID: created.TicketID, Reason: "fixed"}, svc, "u", logging.Discard()).
		Process(context.Background(), "cancel it")
	assert.Equal(t, "cancel_ticket", cancel.Action)
	assert.True(t, *cancel.Success)
	assert.Equal(t, created.TicketID, cancel.TicketID)

	after, err := store.Get(context.Background(), created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusCancelled, after.Status)
	assert.Equal(t, "fixed", after.CancellationReason)
}

func TestProcessMissingTicketID(t *testing.T) {
	for _, action := range []intent.Action{intent.ActionGetTicketStatus, intent.ActionCancelTicket} {
		resp := newAgent(intent.Intent{Action: action, TicketID: "  "}, ticket.NewMemoryStore()).Process(context.Background(), "x")
		assert.Equal(t, string(action), resp.Action)
		require.NotNil(t, resp.Success)
		assert.False(t, *resp.Success)
		assert.Equal(t, "No ticket ID provided", resp.Error)
	}
}

func TestProcessUnknownTicketReportsFailure(t *testing.T) {
	status := newAgent(intent.Intent{Action: intent.ActionGetTicketStatus, TicketID: "missing"}, ticket.NewMemoryStore()).Process(context.Background(), "x")
	assert.False(t, *status.Success)
	assert.Nil(t, status.Ticket)

	cancel := newAgent(intent.Intent{Action: intent.ActionCancelTicket, TicketID: "missing"}, ticket.NewMemoryStore()).Process(context.Background(), "x")
	assert.False(t, *cancel.Success)
}

func TestProcessUnknownAction(t *testing.T) {
	resp := newAgent(intent.Unknown, ticket.NewMemoryStore()).Process(context.Background(), "hmm")
	assert.Equal(t, "unknown", resp.Action)
	assert.False(t, *resp.Success)
	assert.Equal(t, "Could not determine the requested action", resp.Error)
}

type brokenStore struct{ ticket.MemoryStore }

func (*brokenStore) Put(context.Context, *ticket.Ticket) error { return assert.AnError }
func (*brokenStore) Cancel(context.Context, string, string, time.Time) error {
	return assert.AnError
}

func TestProcessCreateStoreFailure(t *testing.T) {
	resp := newAgent(intent.Intent{Action: intent.ActionCreateTicket, Subject: "s"}, &brokenStore{}).Process(context.Background(), "x")
	assert.False(t, *resp.Success)
	assert.Nil(t, resp.Ticket)
}
