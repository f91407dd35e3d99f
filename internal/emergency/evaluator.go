// Package emergency assesses whether a message describes an emergency and escalates severe ones.
package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/llm"
	"github.com/wolfman30/support-agent-router/internal/notify"
	"github.com/wolfman30/support-agent-router/internal/observability/metrics"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// Severity grades an emergency.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

func parseSeverity(raw string) Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "", SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical, SeverityUnknown:
		return s
	default:
		return SeverityUnknown
	}
}

// Evaluation is the model's assessment of a situation.
type Evaluation struct {
	IsEmergency        bool     `json:"is_emergency"`
	Severity           Severity `json:"severity"`
	RecommendedActions []string `json:"recommended_actions"`
	Reasoning          string   `json:"reasoning"`
}

// Escalates reports whether the evaluation crosses the notification threshold.
func (e Evaluation) Escalates() bool {
	return e.IsEmergency && (e.Severity == SeverityHigh || e.Severity == SeverityCritical)
}

func safeDefault(reasoning string) Evaluation {
	return Evaluation{
		IsEmergency:        false,
		Severity:           SeverityUnknown,
		RecommendedActions: []string{},
		Reasoning:          reasoning,
	}
}

var evaluationSchema = llm.MustSchema(`{
  "type": "object",
  "properties": {
    "is_emergency": {"type": "boolean"},
    "severity": {"type": ["string", "null"]},
    "recommended_actions": {"type": ["array", "null"], "items": {"type": "string"}},
    "reasoning": {"type": ["string", "null"]}
  }
}`)

const promptTemplate = `You are an emergency evaluation system. Analyze the following situation and determine:
1. If it's an emergency
2. The severity level (low, medium, high, critical)
3. What immediate actions should be taken

Return a JSON object with the following structure:
{
    "is_emergency": true/false,
    "severity": "low|medium|high|critical",
    "recommended_actions": ["action1", "action2", ...],
    "reasoning": "brief explanation of your assessment"
}

Situation: %s

JSON response:`

// Config carries the evaluator's model and escalation settings.
type Config struct {
	Model     string
	MaxTokens int32
	// TopicARN is the escalation channel. Empty disables notification.
	TopicARN string
}

// Evaluator runs the model assessment and publishes escalations.
type Evaluator struct {
	client   llm.Client
	notifier notify.Notifier
	cfg      Config
	metrics  *metrics.RouterMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewEvaluator builds an evaluator. notifier and m may be nil.
func NewEvaluator(client llm.Client, notifier notify.Notifier, cfg Config, m *metrics.RouterMetrics, logger *logging.Logger) *Evaluator {
	if client == nil {
		panic("emergency: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Evaluator{
		client:   client,
		notifier: notifier,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate assesses text and escalates at most once. It never returns an error:
// model or parse failures yield a non-emergency evaluation with unknown severity.
func (e *Evaluator) Evaluate(ctx context.Context, text string) Evaluation {
	resp, err := e.client.Complete(ctx, llm.UserPrompt(e.cfg.Model, fmt.Sprintf(promptTemplate, text), e.cfg.MaxTokens))
	if err != nil {
		e.logger.Error("emergency evaluation failed", "error", err)
		return safeDefault(fmt.Sprintf("Error: %v", err))
	}

	var eval Evaluation
	if err := llm.DecodeValidated(resp.Text, evaluationSchema, &eval); err != nil {
		e.logger.Warn("emergency evaluation unparseable", "error", err)
		return safeDefault("Failed to evaluate the situation")
	}
	eval.Severity = parseSeverity(string(eval.Severity))
	if eval.RecommendedActions == nil {
		eval.RecommendedActions = []string{}
	}

	if eval.Escalates() {
		e.escalate(ctx, text, eval)
	}
	return eval
}

// Handle evaluates text and shapes the user-facing response.
func (e *Evaluator) Handle(ctx context.Context, text string) agent.Response {
	return Shape(e.Evaluate(ctx, text))
}

type alert struct {
	Timestamp          string   `json:"timestamp"`
	OriginalMessage    string   `json:"original_message"`
	Severity           Severity `json:"severity"`
	RecommendedActions []string `json:"recommended_actions"`
	Reasoning          string   `json:"reasoning"`
}

func (e *Evaluator) escalate(ctx context.Context, text string, eval Evaluation) {
	if e.cfg.TopicARN == "" || e.notifier == nil {
		e.logger.Warn("emergency topic not configured, notification not sent", "severity", eval.Severity)
		e.metrics.ObserveEscalation(string(eval.Severity), false)
		return
	}

	body, err := json.MarshalIndent(alert{
		Timestamp:          e.now().UTC().Format(time.RFC3339Nano),
		OriginalMessage:    text,
		Severity:           eval.Severity,
		RecommendedActions: eval.RecommendedActions,
		Reasoning:          eval.Reasoning,
	}, "", "  ")
	if err != nil {
		e.logger.Error("failed to encode emergency alert", "error", err)
		e.metrics.ObserveEscalation(string(eval.Severity), false)
		return
	}

	subject := fmt.Sprintf("EMERGENCY ALERT - %s severity", eval.Severity)
	if err := e.notifier.Publish(ctx, e.cfg.TopicARN, subject, string(body)); err != nil {
		e.logger.Error("failed to escalate emergency", "error", err, "severity", eval.Severity)
		e.metrics.ObserveEscalation(string(eval.Severity), false)
		return
	}
	e.logger.Info("emergency escalated", "severity", eval.Severity)
	e.metrics.ObserveEscalation(string(eval.Severity), true)
}
