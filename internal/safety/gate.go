// Package safety wraps the router with a two-sided content filter that fails open.
package safety

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/guardrail"
	"github.com/wolfman30/support-agent-router/internal/observability/metrics"
	"github.com/wolfman30/support-agent-router/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	BlockedInputMessage  = "I'm sorry, but I cannot process this request as it violates our content policies."
	BlockedOutputMessage = "I'm sorry, but I cannot provide the generated response as it violates our content policies."

	internalErrorMessage = "An internal error occurred while processing the request"
)

// Router is the orchestrator the gate wraps.
type Router interface {
	Route(ctx context.Context, text, sessionID string) agent.Response
}

// Gate filters text before and after routing. A filter that errors is
// treated as pass-through; a block on input means the router never runs.
type Gate struct {
	router  Router
	filter  guardrail.Filter
	metrics *metrics.RouterMetrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewGate builds a gate. A nil filter makes the gate a pass-through.
func NewGate(router Router, filter guardrail.Filter, m *metrics.RouterMetrics, logger *logging.Logger) *Gate {
	if router == nil {
		panic("safety: router cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		router:  router,
		filter:  filter,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("support-agent-router/safety"),
	}
}

// Process runs one request through input filter, router and output filter.
func (g *Gate) Process(ctx context.Context, text, sessionID string) (resp agent.Response) {
	start := time.Now()
	status := "ok"

	ctx, span := g.tracer.Start(ctx, "safety.process")
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("safety: recovered panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			g.logger.Error("request pipeline panicked", "error", err, "session_id", sessionID)
			status = "panic"
			resp = agent.Response{Error: internalErrorMessage, SessionID: sessionID}
		}
		span.SetAttributes(attribute.String("safety.status", status))
		span.End()
		g.metrics.ObservePipeline(status, time.Since(start).Seconds())
	}()

	in := g.apply(ctx, text, guardrail.DirectionInput)
	if in.IsBlocked {
		status = "blocked_input"
		return agent.Response{
			Status:         agent.StatusBlockedInput,
			Message:        agent.String(BlockedInputMessage),
			BlockedReasons: in.BlockedReasons,
		}
	}

	routed := g.router.Route(ctx, in.FilteredText, sessionID)

	out := g.apply(ctx, ExtractText(routed), guardrail.DirectionOutput)
	if out.IsBlocked {
		status = "blocked_output"
		return agent.Response{
			Status:         agent.StatusBlockedOutput,
			Message:        agent.String(BlockedOutputMessage),
			BlockedReasons: out.BlockedReasons,
		}
	}

	return WithText(routed, out.FilteredText)
}

func (g *Gate) apply(ctx context.Context, text string, dir guardrail.Direction) guardrail.Result {
	if g.filter == nil {
		return guardrail.Pass(text)
	}
	res, err := g.filter.Apply(ctx, text, dir)
	if err != nil {
		g.logger.Warn("content filter failed, passing through", "direction", dir, "error", err)
		g.metrics.ObserveGuardrail(string(dir), "error")
		return guardrail.Pass(text)
	}
	if res.IsBlocked {
		g.logger.Info("content blocked", "direction", dir, "reasons", res.BlockedReasons)
		g.metrics.ObserveGuardrail(string(dir), "blocked")
		return res
	}
	g.metrics.ObserveGuardrail(string(dir), "passed")
	return res
}
