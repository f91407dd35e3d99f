package emergency

import "github.com/wolfman30/support-agent-router/internal/agent"

const (
	escalatedMessage  = "This situation has been identified as a serious emergency and has been escalated to the appropriate team. Please follow these immediate actions:"
	identifiedMessage = "This situation has been identified as a potential emergency. Please consider these recommended actions:"
	notEmergencyMsg   = "This situation has not been identified as an emergency."
)

// Shape maps an evaluation onto one of the three response tiers.
func Shape(eval Evaluation) agent.Response {
	actions := append([]string{}, eval.RecommendedActions...)
	switch {
	case eval.Escalates():
		return agent.Response{
			Status:   agent.StatusEmergencyEscalated,
			Message:  agent.String(escalatedMessage),
			Actions:  actions,
			Severity: string(eval.Severity),
		}
	case eval.IsEmergency:
		return agent.Response{
			Status:   agent.StatusEmergencyIdentified,
			Message:  agent.String(identifiedMessage),
			Actions:  actions,
			Severity: string(eval.Severity),
		}
	default:
		severity := eval.Severity
		if severity == "" {
			severity = SeverityLow
		}
		return agent.Response{
			Status:    agent.StatusNotEmergency,
			Message:   agent.String(notEmergencyMsg),
			Reasoning: agent.String(eval.Reasoning),
			Severity:  string(severity),
		}
	}
}
