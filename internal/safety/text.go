package safety

import (
	"encoding/json"

	"github.com/wolfman30/support-agent-router/internal/agent"
)

// ExtractText picks the text the output filter should see: message, then
// answer, then response. With none of them set, the whole response as JSON.
func ExtractText(resp agent.Response) string {
	switch {
	case resp.Message != nil:
		return *resp.Message
	case resp.Answer != nil:
		return *resp.Answer
	case resp.Reply != nil:
		return *resp.Reply
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return ""
	}
	return string(raw)
}

// WithText returns resp with text written into the field ExtractText read
// from, or into filtered_response when resp carried none of those fields.
func WithText(resp agent.Response, text string) agent.Response {
	switch {
	case resp.Message != nil:
		resp.Message = agent.String(text)
	case resp.Answer != nil:
		resp.Answer = agent.String(text)
	case resp.Reply != nil:
		resp.Reply = agent.String(text)
	default:
		resp.FilteredResponse = agent.String(text)
	}
	return resp
}
