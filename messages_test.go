package agentcli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageKnownTypes(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"user", `{"type":"user","session_id":"s1","message":{"role":"user","content":[]}}`, "user"},
		{"assistant", `{"type":"assistant","message":{"role":"assistant","content":[]}}`, "assistant"},
		{"result", `{"type":"result","status":"success"}`, "result"},
		{"stream_event", `{"type":"stream_event","event":"delta"}`, "stream_event"},
		{"system", `{"type":"system","subtype":"init","session_id":"s1"}`, "system"},
		{"todo_update", `{"type":"todo_update","items":[]}`, "todo_update"},
		{"subagent_result", `{"type":"subagent_result","agent_name":"a"}`, "subagent_result"},
		{"control_request", `{"type":"control_request","request_id":"r1","request":{"subtype":"interrupt"}}`, "control_request"},
		{"control_response", `{"type":"control_response","response":{"subtype":"success","request_id":"r1"}}`, "control_response"},
		{"control_cancel_request", `{"type":"control_cancel_request","request_id":"r1"}`, "control_cancel_request"},
		{"keep_alive", `{"type":"keep_alive"}`, "keep_alive"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := ParseMessage([]byte(tc.line))
			require.True(t, ok)
			assert.Equal(t, tc.want, msg.MessageType())
		})
	}
}

func TestParseMessageCompactBoundaryIsSystemSubtype(t *testing.T) {
	line := `{"type":"system","subtype":"compact_boundary","compact_metadata":{"trigger":"auto","pre_tokens":100}}`
	msg, ok := ParseMessage([]byte(line))
	require.True(t, ok)

	boundary, isBoundary := msg.(CompactBoundaryMessage)
	require.True(t, isBoundary)
	assert.Equal(t, "auto", boundary.CompactMetadata.Trigger)
}

// TestParseMessageUnknownTypeDropsSilently locks in the REDESIGN from the
// teacher's ErrUnknownMessageType behavior: an unrecognized type must
// never error, only report ok=false, so a forward-compatible CLI adding
// a new message kind can never wedge an older SDK build.
func TestParseMessageUnknownTypeDropsSilently(t *testing.T) {
	_, ok := ParseMessage([]byte(`{"type":"some_future_type","x":1}`))
	assert.False(t, ok)
}

func TestParseMessageMalformedJSONDropsSilently(t *testing.T) {
	_, ok := ParseMessage([]byte(`not json`))
	assert.False(t, ok)
}

func TestParseMessageMissingTypeDropsSilently(t *testing.T) {
	_, ok := ParseMessage([]byte(`{"foo":"bar"}`))
	assert.False(t, ok)
}

func TestParseMessageMismatchedShapeDropsSilently(t *testing.T) {
	// "user" type but session_id is a number, not a string: the field
	// fails to unmarshal into UserMessage, so this must drop rather than
	// panic or surface a decode error to the caller.
	_, ok := ParseMessage([]byte(`{"type":"user","session_id":123}`))
	assert.False(t, ok)
}

func TestAssistantMessageContentTextIgnoresNonText(t *testing.T) {
	msg := AssistantMessage{}
	msg.Message.Content = []ContentBlock{
		{Type: "text", Text: "a"},
		{Type: "tool_use", Name: "Bash"},
		{Type: "thinking", Text: "pondering"},
		{Type: "text", Text: "b"},
	}
	assert.Equal(t, "ab", msg.ContentText())
}
