package router

import (
	"encoding/json"
	"strings"

	"github.com/wolfman30/support-agent-router/internal/llm"
)

// AgentKind names the handler a request is dispatched to.
type AgentKind string

const (
	AgentTicketing  AgentKind = "ticketing"
	AgentFAQ        AgentKind = "faq"
	AgentEmergency  AgentKind = "emergency"
	AgentSupervisor AgentKind = "supervisor"
)

// Decision is the parsed routing choice. Extra holds any other keys of a structured decision.
type Decision struct {
	Agent AgentKind
	Extra map[string]any
}

type keywordRule struct {
	agent    AgentKind
	keywords []string
}

// Rules are checked in order; the first group with a hit decides the fragment.
var keywordRules = []keywordRule{
	{agent: AgentTicketing, keywords: []string{"ticket", "create ticket", "cancel ticket"}},
	{agent: AgentFAQ, keywords: []string{"question", "faq", "knowledge base"}},
	{agent: AgentEmergency, keywords: []string{"emergency", "urgent"}},
}

// ParseDecision derives a routing decision from supervisor reply fragments.
// A fragment carrying a JSON object with an "agent" key decides immediately.
// Otherwise each keyword-matching fragment overwrites the previous choice, so
// the last match wins. With no signal the decision is AgentSupervisor.
func ParseDecision(fragments []string) Decision {
	decision := Decision{Agent: AgentSupervisor}
	for _, fragment := range fragments {
		if structured, ok := structuredDecision(fragment); ok {
			return structured
		}
		lower := strings.ToLower(fragment)
		for _, rule := range keywordRules {
			if containsAny(lower, rule.keywords) {
				decision.Agent = rule.agent
				break
			}
		}
	}
	return decision
}

func structuredDecision(fragment string) (Decision, bool) {
	if !strings.Contains(fragment, `"agent"`) {
		return Decision{}, false
	}
	raw, err := llm.ExtractJSONObject(fragment)
	if err != nil {
		return Decision{}, false
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Decision{}, false
	}
	value, ok := payload["agent"]
	if !ok {
		return Decision{}, false
	}
	delete(payload, "agent")
	name, _ := value.(string)
	return Decision{Agent: parseAgentKind(name), Extra: payload}, true
}

func parseAgentKind(raw string) AgentKind {
	switch kind := AgentKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case AgentTicketing, AgentFAQ, AgentEmergency:
		return kind
	default:
		return AgentSupervisor
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
