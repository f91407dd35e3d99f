// Package router dispatches a user message to exactly one specialised handler.
package router

import (
	"context"
	"strings"

	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/emergency"
	"github.com/wolfman30/support-agent-router/internal/observability/metrics"
	"github.com/wolfman30/support-agent-router/internal/supervisor"
	"github.com/wolfman30/support-agent-router/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var emergencyKeywords = []string{"emergency", "accident", "injury", "fire", "urgent", "help", "danger"}

// Supervisor proposes a routing decision for free text.
type Supervisor interface {
	Invoke(ctx context.Context, text, sessionID string) (supervisor.Reply, error)
}

// EmergencyHandler evaluates and responds to possible emergencies.
type EmergencyHandler interface {
	Evaluate(ctx context.Context, text string) emergency.Evaluation
	Handle(ctx context.Context, text string) agent.Response
}

// TicketHandler runs ticket operations for a request.
type TicketHandler interface {
	Process(ctx context.Context, text string) agent.Response
}

// FAQHandler answers questions from the knowledge base.
type FAQHandler interface {
	Answer(ctx context.Context, question string) agent.Response
}

// Handlers groups the collaborators the router dispatches to.
type Handlers struct {
	Supervisor Supervisor
	Emergency  EmergencyHandler
	Tickets    TicketHandler
	FAQ        FAQHandler
}

// Router is the core orchestrator. It holds no per-request state.
type Router struct {
	h       Handlers
	metrics *metrics.RouterMetrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

func New(h Handlers, m *metrics.RouterMetrics, logger *logging.Logger) *Router {
	switch {
	case h.Supervisor == nil:
		panic("router: supervisor cannot be nil")
	case h.Emergency == nil:
		panic("router: emergency handler cannot be nil")
	case h.Tickets == nil:
		panic("router: ticket handler cannot be nil")
	case h.FAQ == nil:
		panic("router: faq handler cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{h: h, metrics: m, logger: logger, tracer: otel.Tracer("support-agent-router/router")}
}

// Route handles text end to end and always returns a response.
func (r *Router) Route(ctx context.Context, text, sessionID string) agent.Response {
	ctx, span := r.tracer.Start(ctx, "router.route")
	defer span.End()

	if HasEmergencyKeyword(text) {
		eval := r.h.Emergency.Evaluate(ctx, text)
		if eval.IsEmergency {
			span.SetAttributes(attribute.String("router.agent", string(AgentEmergency)), attribute.Bool("router.precheck", true))
			r.metrics.ObserveRoute(string(AgentEmergency))
			return emergency.Shape(eval)
		}
	}

	reply, err := r.h.Supervisor.Invoke(ctx, text, sessionID)
	if err != nil {
		span.RecordError(err)
		r.logger.Error("supervisor invocation failed", "error", err)
		r.metrics.ObserveRoute("error")
		return agent.Response{Error: err.Error(), SessionID: sessionID}
	}

	decision := ParseDecision(reply.Fragments)
	span.SetAttributes(attribute.String("router.agent", string(decision.Agent)))
	r.metrics.ObserveRoute(string(decision.Agent))
	r.logger.Info("request routed", "agent", decision.Agent, "session_id", reply.SessionID)

	switch decision.Agent {
	case AgentTicketing:
		return r.h.Tickets.Process(ctx, text)
	case AgentFAQ:
		return r.h.FAQ.Answer(ctx, text)
	case AgentEmergency:
		return r.h.Emergency.Handle(ctx, text)
	default:
		return agent.Response{Reply: agent.String(reply.Text()), SessionID: reply.SessionID}
	}
}

// HasEmergencyKeyword reports whether text contains any emergency keyword, ignoring case.
func HasEmergencyKeyword(text string) bool {
	return containsAny(strings.ToLower(text), emergencyKeywords)
}
