package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseOmitsAbsentTextFields(t *testing.T) {
	raw, err := json.Marshal(Response{Status: StatusNotEmergency, Message: String("")})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "message", "empty but present message must serialize")
	assert.NotContains(t, decoded, "answer")
	assert.NotContains(t, decoded, "response")
	assert.NotContains(t, decoded, "filtered_response")
}

func TestReplySerializesAsResponse(t *testing.T) {
	raw, err := json.Marshal(Response{Reply: String("hi"), SessionID: "s-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"hi","session_id":"s-1"}`, string(raw))
}

func TestFailure(t *testing.T) {
	resp := Failure("cancel_ticket", "No ticket ID provided")
	require.NotNil(t, resp.Success)
	assert.False(t, *resp.Success)
	assert.Equal(t, "cancel_ticket", resp.Action)
	assert.Equal(t, "No ticket ID provided", resp.Error)
}
