package agentcli

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeDispatcher struct{}

func (fakeDispatcher) DispatchCanUseTool(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error) {
	return map[string]interface{}{"allowed": true}, nil
}
func (fakeDispatcher) DispatchHookCallback(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}
func (fakeDispatcher) DispatchMCPMessage(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func newTestControlHandler(t *testing.T) (*ControlHandler, *MockSubprocessRunner) {
	t.Helper()
	runner := NewMockSubprocessRunner()
	tr, err := NewTransport(&Options{CLIPath: "agent"}, runner)
	require.NoError(t, err)
	require.NoError(t, tr.Start(context.Background()))
	t.Cleanup(func() { tr.Close() })

	return NewControlHandler(tr, fakeDispatcher{}), runner
}

// TestControlHandlerRegistrationRaceInstantResponse is the central
// concurrency correctness test: it simulates a CLI so fast it replies to
// a control request within the same synchronous write path that sent
// it. If the pending slot were registered after the write instead of
// before, this response would find nothing to fulfill and SendRequest
// would time out.
func TestControlHandlerRegistrationRaceInstantResponse(t *testing.T) {
	handler, runner := newTestControlHandler(t)

	runner.OnWrite = func(data []byte) {
		var req ControlRequest
		require.NoError(t, json.Unmarshal(data, &req))

		resp := ControlResponse{
			Type: "control_response",
			Response: ControlResponseBody{
				Subtype:   "success",
				RequestID: req.RequestID,
				Response:  map[string]interface{}{"ok": true},
			},
		}
		handler.HandleControlResponse(resp.Response)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	value, err := handler.SendRequest(ctx, "interrupt", ControlRequestBody{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, true, value["ok"])
}

// TestControlHandlerRegistrationRaceConcurrentRapid fires many
// concurrent SendRequest calls, each answered instantly from the write
// hook, and asserts every single one resolves successfully — no lost
// responses, no deadlocks, regardless of how many requests race through
// SendRequest at once.
func TestControlHandlerRegistrationRaceConcurrentRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "numRequests")

		handler, runner := newTestControlHandlerForRapid(t)
		runner.OnWrite = func(data []byte) {
			var req ControlRequest
			if json.Unmarshal(data, &req) != nil {
				return
			}
			handler.HandleControlResponse(ControlResponseBody{
				Subtype:   "success",
				RequestID: req.RequestID,
				Response:  map[string]interface{}{"echo": req.RequestID},
			})
		}

		var wg sync.WaitGroup
		errs := make([]error, n)
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_, err := handler.SendRequest(ctx, "interrupt", ControlRequestBody{}, time.Second)
				errs[i] = err
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Fatalf("request %d never resolved: %v", i, err)
			}
		}
	})
}

func newTestControlHandlerForRapid(t *rapid.T) (*ControlHandler, *MockSubprocessRunner) {
	runner := NewMockSubprocessRunner()
	tr, err := NewTransport(&Options{CLIPath: "agent"}, runner)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return NewControlHandler(tr, fakeDispatcher{}), runner
}

func TestControlHandlerTimeoutRemovesPendingSlot(t *testing.T) {
	handler, _ := newTestControlHandler(t)

	ctx := context.Background()
	_, err := handler.SendRequest(ctx, "interrupt", ControlRequestBody{}, 20*time.Millisecond)
	require.Error(t, err)
	var timeoutErr *ErrProtocolTimeout
	assert.ErrorAs(t, err, &timeoutErr)

	assert.Empty(t, handler.pending)
}

func TestControlHandlerCancelAllFulfillsEveryPending(t *testing.T) {
	handler, _ := newTestControlHandler(t)

	const n = 5
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			ctx := context.Background()
			_, err := handler.SendRequest(ctx, "interrupt", ControlRequestBody{}, 5*time.Second)
			results <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	handler.CancelAll(&ErrSessionClosed{})

	for i := 0; i < n; i++ {
		select {
		case err := <-results:
			require.Error(t, err)
		case <-time.After(time.Second):
			t.Fatal("CancelAll did not unblock every pending request")
		}
	}
}

func TestControlHandlerUnmatchedResponseDropsSilently(t *testing.T) {
	handler, _ := newTestControlHandler(t)

	assert.NotPanics(t, func() {
		handler.HandleControlResponse(ControlResponseBody{RequestID: "no_such_id", Subtype: "success"})
	})
}

func TestControlHandlerHandlesInboundRequestAndWritesResponse(t *testing.T) {
	runner := NewMockSubprocessRunner()
	tr, err := NewTransport(&Options{CLIPath: "agent"}, runner)
	require.NoError(t, err)
	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	handler := NewControlHandler(tr, fakeDispatcher{})

	written := make(chan []byte, 1)
	runner.OnWrite = func(data []byte) { written <- data }

	handler.HandleControlRequest(context.Background(), ControlRequest{
		Type:      "control_request",
		RequestID: "req_inbound",
		Request:   ControlRequestBody{Subtype: "can_use_tool"},
	})

	select {
	case data := <-written:
		var resp ControlResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "success", resp.Response.Subtype)
		assert.Equal(t, "req_inbound", resp.Response.RequestID)
	case <-time.After(time.Second):
		t.Fatal("HandleControlRequest never wrote a response")
	}
}
