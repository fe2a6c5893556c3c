package agentcli

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCooperativeSession(t *testing.T, options *Options) (*Session, *MockSubprocessRunner) {
	t.Helper()
	if options.CLIPath == "" {
		options.CLIPath = "agent"
	}
	runner := cooperativeRunner()
	sess, err := NewSession(options, runner)
	require.NoError(t, err)
	require.NoError(t, sess.Start(context.Background()))
	t.Cleanup(func() { sess.Close() })
	return sess, runner
}

func TestSessionInitializeNoopWithoutFeatures(t *testing.T) {
	sess, runner := newCooperativeSession(t, &Options{})

	wroteAnything := false
	runner.OnWrite = func(data []byte) { wroteAnything = true }

	require.NoError(t, sess.Initialize(context.Background()))
	assert.False(t, wroteAnything, "Initialize must not touch the wire when nothing requires the handshake")
}

func autoRespondInitialize(runner *MockSubprocessRunner) {
	runner.OnWrite = func(data []byte) {
		var req ControlRequest
		if json.Unmarshal(data, &req) != nil || req.Type != "control_request" {
			return
		}
		resp := ControlResponse{
			Type: "control_response",
			Response: ControlResponseBody{
				Subtype:   "success",
				RequestID: req.RequestID,
				Response:  map[string]interface{}{},
			},
		}
		data, _ = json.Marshal(resp)
		_ = runner.StdoutPipe.WriteString(string(data) + "\n")
	}
}

func TestSessionInitializeHandshakeWhenHooksConfigured(t *testing.T) {
	options := &Options{
		Hooks: map[HookType][]HookConfig{
			HookTypeStop: {{Callback: func(ctx context.Context, in HookInput) (HookOutput, error) {
				return HookContinue(), nil
			}}},
		},
	}
	sess, runner := newCooperativeSession(t, options)
	autoRespondInitialize(runner)

	require.NoError(t, sess.Initialize(context.Background()))
	require.NoError(t, sess.Initialize(context.Background()), "second call must be a no-op, not re-send")
}

func TestSessionSessionIDPopulatedFromInitSystemMessage(t *testing.T) {
	sess, runner := newCooperativeSession(t, &Options{})

	require.NoError(t, runner.StdoutPipe.WriteString(
		`{"type":"system","subtype":"init","session_id":"abc123"}`+"\n"))

	deadline := time.After(time.Second)
	for {
		select {
		case item := <-sess.Messages():
			require.NoError(t, item.Err)
			if sys, ok := item.Message.(SystemMessage); ok && sys.Subtype == "init" {
				assert.Equal(t, "abc123", sess.SessionID())
				return
			}
		case <-deadline:
			t.Fatal("never observed the init system message")
		}
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	sess, _ := newCooperativeSession(t, &Options{})
	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
}

func TestSessionCloseCancelsPendingControlCalls(t *testing.T) {
	sess, _ := newCooperativeSession(t, &Options{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- sess.Interrupt(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, sess.Close())

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock a pending control call")
	}
}

func TestSessionOperationsFailAfterClose(t *testing.T) {
	sess, _ := newCooperativeSession(t, &Options{})
	require.NoError(t, sess.Close())

	err := sess.Interrupt(context.Background())
	require.Error(t, err)
	var closed *ErrSessionClosed
	assert.ErrorAs(t, err, &closed)

	err = sess.WritePrompt(context.Background(), UserMessage{})
	require.Error(t, err)
	assert.ErrorAs(t, err, &closed)
}

func TestSessionMaterializeToolConfigCleanedUpOnClose(t *testing.T) {
	server := CreateMcpServer(McpServerOptions{
		Name: "calculator",
		Tools: []ToolRegistrar{
			Tool("add", "Add two numbers", func(ctx context.Context, args addArgs) (ToolResult, error) {
				return TextResult("ok"), nil
			}),
		},
	})
	options := &Options{SDKMcpServers: map[string]*McpServer{"calculator": server}}

	sess, runner := newCooperativeSession(t, options)
	autoRespondInitialize(runner)

	require.NoError(t, sess.Initialize(context.Background()))

	sess.mu.Lock()
	tmpPath := sess.toolConfigTmp
	sess.mu.Unlock()
	require.NotEmpty(t, tmpPath)

	_, err := os.Stat(tmpPath)
	require.NoError(t, err, "temp tool config file must exist after Initialize")

	require.NoError(t, sess.Close())

	_, err = os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(err), "temp tool config file must be removed on Close")
}

func TestSessionMCPStatusDecodesTypedServerList(t *testing.T) {
	sess, runner := newCooperativeSession(t, &Options{})

	runner.OnWrite = func(data []byte) {
		var req ControlRequest
		if json.Unmarshal(data, &req) != nil || req.Type != "control_request" {
			return
		}
		resp := ControlResponse{
			Type: "control_response",
			Response: ControlResponseBody{
				Subtype:   "success",
				RequestID: req.RequestID,
				Response: map[string]interface{}{
					"servers": []map[string]interface{}{
						{
							"name":   "calculator",
							"status": "connected",
							"serverInfo": map[string]interface{}{
								"name":    "calculator",
								"version": "1.0.0",
							},
						},
						{"name": "flaky", "status": "failed"},
					},
				},
			},
		}
		out, _ := json.Marshal(resp)
		_ = runner.StdoutPipe.WriteString(string(out) + "\n")
	}

	servers, err := sess.MCPStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, servers, 2)

	assert.Equal(t, "calculator", servers[0].Name)
	assert.Equal(t, McpServerStateConnected, servers[0].Status)
	require.NotNil(t, servers[0].ServerInfo)
	assert.Equal(t, "1.0.0", servers[0].ServerInfo.Version)

	assert.Equal(t, "flaky", servers[1].Name)
	assert.Equal(t, McpServerStateFailed, servers[1].Status)
	assert.Nil(t, servers[1].ServerInfo)
}

func TestSessionDispatchCanUseToolAllow(t *testing.T) {
	options := &Options{
		CanUseTool: func(ctx context.Context, req ToolPermissionRequest) PermissionResult {
			assert.Equal(t, "Bash", req.ToolName)
			return PermissionAllow{}
		},
	}
	sess, runner := newCooperativeSession(t, options)

	written := make(chan []byte, 1)
	runner.OnWrite = func(data []byte) { written <- data }

	require.NoError(t, runner.StdoutPipe.WriteString(
		`{"type":"control_request","request_id":"r1","request":{"subtype":"can_use_tool","tool_name":"Bash","input":{}}}`+"\n"))

	select {
	case data := <-written:
		var resp ControlResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "success", resp.Response.Subtype)
		assert.Equal(t, "allow", resp.Response.Response["behavior"])
	case <-time.After(time.Second):
		t.Fatal("session never answered the inbound can_use_tool request")
	}
}

func TestSessionDispatchCanUseToolNoHandlerRegistered(t *testing.T) {
	sess, runner := newCooperativeSession(t, &Options{})

	written := make(chan []byte, 1)
	runner.OnWrite = func(data []byte) { written <- data }

	require.NoError(t, runner.StdoutPipe.WriteString(
		`{"type":"control_request","request_id":"r1","request":{"subtype":"can_use_tool","tool_name":"Bash","input":{}}}`+"\n"))

	select {
	case data := <-written:
		var resp ControlResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "error", resp.Response.Subtype)
	case <-time.After(time.Second):
		t.Fatal("session never answered the inbound can_use_tool request")
	}
}

