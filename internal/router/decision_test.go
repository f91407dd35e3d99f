package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      AgentKind
	}{
		{name: "no fragments", fragments: nil, want: AgentSupervisor},
		{name: "no signal", fragments: []string{"Hello! How can I assist you today?"}, want: AgentSupervisor},
		{name: "structured", fragments: []string{`Routing: {"agent": "faq"}`}, want: AgentFAQ},
		{name: "structured beats keywords in same fragment", fragments: []string{`This is about a ticket {"agent":"emergency"}`}, want: AgentEmergency},
		{name: "structured wins over later fragments", fragments: []string{`{"agent":"ticketing"}`, "faq question"}, want: AgentTicketing},
		{name: "structured unknown agent", fragments: []string{`{"agent":"billing"}`}, want: AgentSupervisor},
		{name: "malformed structured falls back to keywords", fragments: []string{`{"agent": faq, "note": "ticket"}`}, want: AgentTicketing},
		{name: "ticket keyword", fragments: []string{"I will CREATE TICKET for you"}, want: AgentTicketing},
		{name: "faq keyword", fragments: []string{"That's a Knowledge Base lookup"}, want: AgentFAQ},
		{name: "emergency keyword", fragments: []string{"This sounds urgent"}, want: AgentEmergency},
		{name: "first group within a fragment", fragments: []string{"urgent question about a ticket"}, want: AgentTicketing},
		{name: "last matching fragment wins", fragments: []string{"ticket related", "actually a faq"}, want: AgentFAQ},
		{name: "non-matching fragment keeps earlier match", fragments: []string{"emergency!", "thanks for waiting"}, want: AgentEmergency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDecision(tt.fragments).Agent)
		})
	}
}

func TestParseDecisionKeepsExtraFields(t *testing.T) {
	d := ParseDecision([]string{`{"agent":"ticketing","priority":"high","count":2}`})
	assert.Equal(t, AgentTicketing, d.Agent)
	assert.Equal(t, map[string]any{"priority": "high", "count": float64(2)}, d.Extra)
}

func TestParseDecisionIsPure(t *testing.T) {
	fragments := []string{"ticket", `{"agent":"faq"}`}
	first := ParseDecision(fragments)
	second := ParseDecision(fragments)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"ticket", `{"agent":"faq"}`}, fragments)
}

func TestHasEmergencyKeyword(t *testing.T) {
	for _, text := range []string{"There's a FIRE!", "car accident", "I need Help", "DANGER zone", "minor injury"} {
		assert.True(t, HasEmergencyKeyword(text), text)
	}
	for _, text := range []string{"", "What is your return policy?", "reset my password"} {
		assert.False(t, HasEmergencyKeyword(text), text)
	}
}
