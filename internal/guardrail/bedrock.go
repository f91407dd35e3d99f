package guardrail

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/wolfman30/support-agent-router/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// reasonIntervened is reported when the guardrail intervened without naming a policy we recognise.
const reasonIntervened = "guardrail_intervened"

type applyGuardrailAPI interface {
	ApplyGuardrail(ctx context.Context, params *bedrockruntime.ApplyGuardrailInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ApplyGuardrailOutput, error)
}

// BedrockFilter applies a managed Bedrock guardrail. It is disabled, and lets
// everything through, unless both the guardrail id and version are set.
type BedrockFilter struct {
	api     applyGuardrailAPI
	id      string
	version string
	logger  *logging.Logger
	tracer  trace.Tracer
}

func NewBedrockFilter(api applyGuardrailAPI, id, version string, logger *logging.Logger) *BedrockFilter {
	if logger == nil {
		logger = logging.Default()
	}
	return &BedrockFilter{
		api:     api,
		id:      strings.TrimSpace(id),
		version: strings.TrimSpace(version),
		logger:  logger,
		tracer:  otel.Tracer("support-agent-router/guardrail"),
	}
}

// Enabled reports whether the filter will call the guardrail service.
func (f *BedrockFilter) Enabled() bool {
	return f != nil && f.api != nil && f.id != "" && f.version != ""
}

func (f *BedrockFilter) Apply(ctx context.Context, text string, dir Direction) (Result, error) {
	if !f.Enabled() {
		return Pass(text), nil
	}

	ctx, span := f.tracer.Start(ctx, "guardrail.apply")
	defer span.End()
	span.SetAttributes(attribute.String("guardrail.direction", string(dir)))

	source := types.GuardrailContentSourceInput
	if dir == DirectionOutput {
		source = types.GuardrailContentSourceOutput
	}

	out, err := f.api.ApplyGuardrail(ctx, &bedrockruntime.ApplyGuardrailInput{
		GuardrailIdentifier: aws.String(f.id),
		GuardrailVersion:    aws.String(f.version),
		Source:              source,
		Content: []types.GuardrailContentBlock{
			&types.GuardrailContentBlockMemberText{Value: types.GuardrailTextBlock{Text: aws.String(text)}},
		},
	})
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("guardrail: apply %s: %w", dir, err)
	}

	if out.Action != types.GuardrailActionGuardrailIntervened {
		return Pass(text), nil
	}

	reasons := blockedReasons(out.Assessments)
	if len(reasons) == 0 && !anonymized(out.Assessments) {
		// Outputs hold the guardrail's canned message, never usable text.
		reasons = []string{reasonIntervened}
	}
	span.SetAttributes(attribute.Bool("guardrail.blocked", len(reasons) > 0))
	if len(reasons) > 0 {
		f.logger.Info("guardrail blocked content", "direction", dir, "reasons", reasons)
		return Result{IsBlocked: true, FilteredText: text, BlockedReasons: reasons}, nil
	}

	if masked := outputText(out.Outputs); masked != "" {
		return Pass(masked), nil
	}
	return Pass(text), nil
}

// anonymized reports whether any sensitive-information filter masked a match.
func anonymized(assessments []types.GuardrailAssessment) bool {
	for _, a := range assessments {
		if a.SensitiveInformationPolicy == nil {
			continue
		}
		for _, p := range a.SensitiveInformationPolicy.PiiEntities {
			if p.Action == types.GuardrailSensitiveInformationPolicyActionAnonymized {
				return true
			}
		}
		for _, r := range a.SensitiveInformationPolicy.Regexes {
			if r.Action == types.GuardrailSensitiveInformationPolicyActionAnonymized {
				return true
			}
		}
	}
	return false
}

func blockedReasons(assessments []types.GuardrailAssessment) []string {
	var reasons []string
	for _, a := range assessments {
		if a.TopicPolicy != nil {
			for _, t := range a.TopicPolicy.Topics {
				if t.Action == types.GuardrailTopicPolicyActionBlocked {
					reasons = append(reasons, aws.ToString(t.Name))
				}
			}
		}
		if a.ContentPolicy != nil {
			for _, c := range a.ContentPolicy.Filters {
				if c.Action == types.GuardrailContentPolicyActionBlocked {
					reasons = append(reasons, "content:"+strings.ToLower(string(c.Type)))
				}
			}
		}
		if a.WordPolicy != nil {
			for _, w := range a.WordPolicy.CustomWords {
				if w.Action == types.GuardrailWordPolicyActionBlocked {
					reasons = append(reasons, "word:"+aws.ToString(w.Match))
				}
			}
			for _, w := range a.WordPolicy.ManagedWordLists {
				if w.Action == types.GuardrailWordPolicyActionBlocked {
					reasons = append(reasons, "word:"+strings.ToLower(string(w.Type)))
				}
			}
		}
		if a.SensitiveInformationPolicy != nil {
			for _, p := range a.SensitiveInformationPolicy.PiiEntities {
				if p.Action == types.GuardrailSensitiveInformationPolicyActionBlocked {
					reasons = append(reasons, "pii:"+strings.ToLower(string(p.Type)))
				}
			}
			for _, r := range a.SensitiveInformationPolicy.Regexes {
				if r.Action == types.GuardrailSensitiveInformationPolicyActionBlocked {
					reasons = append(reasons, "regex:"+aws.ToString(r.Name))
				}
			}
		}
		if a.ContextualGroundingPolicy != nil {
			for _, g := range a.ContextualGroundingPolicy.Filters {
				if g.Action == types.GuardrailContextualGroundingPolicyActionBlocked {
					reasons = append(reasons, "grounding:"+strings.ToLower(string(g.Type)))
				}
			}
		}
	}
	return reasons
}

func outputText(outputs []types.GuardrailOutputContent) string {
	parts := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if t := aws.ToString(o.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
