package agentcli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookRegistryRegisterAssignsStableID(t *testing.T) {
	r := NewHookRegistry()
	id1 := r.Register(HookTypePreToolUse, "Bash", 0, func(ctx context.Context, in HookInput) (HookOutput, error) {
		return HookContinue(), nil
	})
	id2 := r.Register(HookTypePreToolUse, "Read", 0, func(ctx context.Context, in HookInput) (HookOutput, error) {
		return HookContinue(), nil
	})
	assert.NotEqual(t, id1, id2)
}

func TestHookRegistryGetHookConfigUsesDefaultTimeout(t *testing.T) {
	r := NewHookRegistry()
	r.Register(HookTypePreToolUse, "Bash", 0, nil)

	cfg := r.GetHookConfig()
	matchers := cfg[string(HookTypePreToolUse)]
	require.Len(t, matchers, 1)
	assert.Equal(t, DefaultHookTimeoutSeconds, matchers[0].Timeout)
	assert.Equal(t, "Bash", matchers[0].Matcher)
}

func TestHookRegistryGetHookConfigEmptyIsNil(t *testing.T) {
	r := NewHookRegistry()
	assert.Nil(t, r.GetHookConfig())
}

// TestHookRegistryDispatchRoundTrip exercises a full PreToolUse
// callback: registration, dispatch with a wire-shaped payload, and the
// handler's decision flowing back out as a HookOutput.
func TestHookRegistryDispatchRoundTrip(t *testing.T) {
	r := NewHookRegistry()
	var seenToolName string
	id := r.Register(HookTypePreToolUse, ".*", 0, func(ctx context.Context, in HookInput) (HookOutput, error) {
		pre := in.(PreToolUseInput)
		seenToolName = pre.ToolName
		return HookDeny("not allowed"), nil
	})

	raw := json.RawMessage(`{"session_id":"s1","tool_name":"Bash","tool_input":{"command":"ls"}}`)
	out, err := r.Dispatch(context.Background(), id, raw)
	require.NoError(t, err)

	assert.Equal(t, "Bash", seenToolName)
	assert.Equal(t, "deny", permissionDecision(out))
}

func TestHookRegistryDispatchUnknownCallbackID(t *testing.T) {
	r := NewHookRegistry()
	_, err := r.Dispatch(context.Background(), "hook_999", json.RawMessage(`{}`))
	require.Error(t, err)
	var notFound *ErrHookCallbackNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestHookRegistryDispatchMalformedInput(t *testing.T) {
	r := NewHookRegistry()
	id := r.Register(HookTypePreToolUse, "", 0, func(ctx context.Context, in HookInput) (HookOutput, error) {
		return HookContinue(), nil
	})

	_, err := r.Dispatch(context.Background(), id, json.RawMessage(`not json`))
	require.Error(t, err)
	var invalid *ErrHookInvalidInput
	assert.ErrorAs(t, err, &invalid)
}

func TestHookRegistryRegisterFromOptions(t *testing.T) {
	r := NewHookRegistry()
	called := false
	r.RegisterFromOptions(map[HookType][]HookConfig{
		HookTypeStop: {
			{Matcher: "", Timeout: 10, Callback: func(ctx context.Context, in HookInput) (HookOutput, error) {
				called = true
				return HookContinue(), nil
			}},
		},
	})

	cfg := r.GetHookConfig()
	require.Len(t, cfg[string(HookTypeStop)], 1)
	assert.Equal(t, 10, cfg[string(HookTypeStop)][0].Timeout)

	var id string
	for id = range r.entries {
	}
	_, err := r.Dispatch(context.Background(), id, json.RawMessage(`{"session_id":"s1"}`))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestCombineHookOutputsFirstDenyWins(t *testing.T) {
	outputs := []HookOutput{
		HookAllow(nil, "first context"),
		HookDeny("blocked by second"),
		HookAllow(nil, "third context"),
	}
	combined := CombineHookOutputs(outputs)
	assert.Equal(t, "deny", permissionDecision(combined))
	assert.Equal(t, "blocked by second", combined.Reason)
}

func TestCombineHookOutputsLastUpdatedInputWins(t *testing.T) {
	outputs := []HookOutput{
		HookAllow(map[string]interface{}{"command": "ls -la"}, ""),
		HookAllow(map[string]interface{}{"command": "ls -la -h"}, ""),
	}
	combined := CombineHookOutputs(outputs)
	assert.Equal(t, "allow", permissionDecision(combined))
	assert.Equal(t, "ls -la -h", combined.UpdatedInput["command"])
}

func TestCombineHookOutputsConcatenatesContexts(t *testing.T) {
	outputs := []HookOutput{
		HookAllow(nil, "context A"),
		HookAllow(nil, "context B"),
	}
	combined := CombineHookOutputs(outputs)
	assert.Equal(t, "context A\ncontext B", combined.AdditionalContext)
}

func TestCombineHookOutputsNoDecisionsJustConcatenatesContexts(t *testing.T) {
	outputs := []HookOutput{
		{AdditionalContext: "note one"},
		{AdditionalContext: "note two"},
	}
	combined := CombineHookOutputs(outputs)
	assert.Equal(t, "", permissionDecision(combined))
	assert.Equal(t, "note one\nnote two", combined.AdditionalContext)
}

func TestCombineHookOutputsEmptyIsContinue(t *testing.T) {
	combined := CombineHookOutputs(nil)
	assert.True(t, combined.Continue)
}

func TestBuildHookResponseSendsExplicitContinueFalse(t *testing.T) {
	resp, err := buildHookResponse(HookStop("done"))
	require.NoError(t, err)

	cont, ok := resp["continue"]
	require.True(t, ok, "continue must be sent explicitly, not dropped by omitempty")
	assert.Equal(t, false, cont)
	assert.Equal(t, "done", resp["stopReason"])
}

func TestBuildHookResponseOmitsContinueWhenDecisionSet(t *testing.T) {
	resp, err := buildHookResponse(BlockOutput("not allowed"))
	require.NoError(t, err)

	_, hasContinue := resp["continue"]
	assert.False(t, hasContinue, "continue must be omitted alongside a decision, or the CLI short-circuits before honoring it")
	assert.Equal(t, "block", resp["decision"])
	assert.Equal(t, "not allowed", resp["reason"])
}

func TestBuildHookResponseSendsExplicitContinueTrue(t *testing.T) {
	resp, err := buildHookResponse(HookContinue())
	require.NoError(t, err)
	assert.Equal(t, true, resp["continue"])
}
