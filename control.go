package agentcli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultControlTimeout is the per-request timeout used when a caller
// doesn't specify one.
const DefaultControlTimeout = 60 * time.Second

// InboundDispatcher resolves inbound control requests (can_use_tool,
// hook_callback, mcp_message) to the component that owns handling them.
// Session implements this by composing a permission handler, a Hook
// Registry, and a Tool Server Router; tests can substitute a fake.
type InboundDispatcher interface {
	// DispatchCanUseTool handles an inbound can_use_tool request.
	DispatchCanUseTool(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error)
	// DispatchHookCallback handles an inbound hook_callback request.
	DispatchHookCallback(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error)
	// DispatchMCPMessage handles an inbound mcp_message request.
	DispatchMCPMessage(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error)
}

// pendingRequest is a one-shot completion handle for one outbound
// control request.
type pendingRequest struct {
	resultCh chan controlResult
	done     atomic.Bool
}

type controlResult struct {
	value map[string]interface{}
	err   error
}

func (p *pendingRequest) fulfill(res controlResult) {
	if p.done.CompareAndSwap(false, true) {
		p.resultCh <- res
	}
}

// ControlHandler correlates outbound control requests with their
// responses by request_id, and dispatches inbound control requests to
// user-registered handlers.
//
// The pending-request table is a single map guarded by one mutex, not a
// sync.Map plus a separately-scheduled write: SendRequest inserts the
// pending slot and writes the request line inside the same critical
// path, in that order, so there is never a window where a fast CLI
// response can arrive before the slot exists to receive it.
type ControlHandler struct {
	transport *Transport

	mu        sync.Mutex
	pending   map[string]*pendingRequest
	requestID atomic.Uint64

	dispatcher InboundDispatcher
}

// NewControlHandler creates a ControlHandler writing requests through
// transport and dispatching inbound requests to dispatcher.
func NewControlHandler(transport *Transport, dispatcher InboundDispatcher) *ControlHandler {
	return &ControlHandler{
		transport:  transport,
		pending:    make(map[string]*pendingRequest),
		dispatcher: dispatcher,
	}
}

// NextRequestID generates a fresh, monotonic request id, unique within
// this handler (each ControlHandler keeps its own counter).
func (h *ControlHandler) NextRequestID() string {
	return fmt.Sprintf("req_%d", h.requestID.Add(1))
}

// SendRequest issues an outbound control request and waits for its
// response, a cancellation, or the timeout (DefaultControlTimeout if
// zero). The pending slot is registered before the request is written
// on the wire — see the type docstring — so HandleControlResponse can
// never observe a response for an id that isn't registered yet.
func (h *ControlHandler) SendRequest(
	ctx context.Context,
	subtype string,
	body ControlRequestBody,
	timeout time.Duration,
) (map[string]interface{}, error) {
	if timeout <= 0 {
		timeout = DefaultControlTimeout
	}

	requestID := h.NextRequestID()
	body.Subtype = subtype

	pr := &pendingRequest{resultCh: make(chan controlResult, 1)}

	// Insert before write: this is the one line in the whole component
	// that matters for the registration-race invariant.
	h.mu.Lock()
	h.pending[requestID] = pr
	h.mu.Unlock()

	req := ControlRequest{
		Type:      "control_request",
		RequestID: requestID,
		Request:   body,
	}
	if err := h.transport.Write(ctx, req); err != nil {
		h.remove(requestID)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-pr.resultCh:
		return res.value, res.err
	case <-timer.C:
		h.remove(requestID)
		return nil, &ErrProtocolTimeout{RequestID: requestID}
	case <-ctx.Done():
		h.remove(requestID)
		return nil, &ErrProtocolCancelled{RequestID: requestID}
	}
}

// remove deletes a pending slot, if present. Used on timeout,
// cancellation, and write failure so a slot is never left dangling.
func (h *ControlHandler) remove(requestID string) *pendingRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	pr := h.pending[requestID]
	delete(h.pending, requestID)
	return pr
}

// HandleControlResponse fulfills the pending slot named by response's
// request_id, if one exists. A response with no matching id (already
// timed out, already cancelled, or simply unknown) is dropped without
// error — there is no ordering guarantee across request ids, so an
// unmatched response is not itself a protocol violation.
func (h *ControlHandler) HandleControlResponse(resp ControlResponseBody) {
	pr := h.remove(resp.RequestID)
	if pr == nil {
		return
	}
	if resp.Subtype == "error" {
		pr.fulfill(controlResult{err: &ErrProtocolResponseError{RequestID: resp.RequestID, Message: resp.Error}})
		return
	}
	pr.fulfill(controlResult{value: resp.Response})
}

// HandleControlCancelRequest cancels the pending slot for requestID, if
// any. The original waiter (if it hasn't already timed out) observes
// Cancelled.
func (h *ControlHandler) HandleControlCancelRequest(requestID string) {
	pr := h.remove(requestID)
	if pr == nil {
		return
	}
	pr.fulfill(controlResult{err: &ErrProtocolCancelled{RequestID: requestID}})
}

// CancelAll cancels every outstanding pending request with the given
// cause, used by Session.Close to drain in-flight calls instead of
// leaving them to time out naturally.
func (h *ControlHandler) CancelAll(cause error) {
	h.mu.Lock()
	pending := h.pending
	h.pending = make(map[string]*pendingRequest)
	h.mu.Unlock()

	for _, pr := range pending {
		pr.fulfill(controlResult{err: cause})
	}
}

// HandleControlRequest dispatches an inbound control request (one the
// CLI initiated) to the registered handler for its subtype, and writes
// a control_response back over the transport using the same request_id.
//
// Dispatch runs on its own goroutine — not the message loop's — so a
// handler that itself calls back into Session (e.g. to read SessionID)
// can never deadlock against the loop that is currently blocked waiting
// for this very dispatch to finish.
func (h *ControlHandler) HandleControlRequest(ctx context.Context, req ControlRequest) {
	go h.dispatchAndRespond(ctx, req)
}

func (h *ControlHandler) dispatchAndRespond(ctx context.Context, req ControlRequest) {
	var (
		value map[string]interface{}
		err   error
	)

	if h.dispatcher == nil {
		err = &ErrProtocolUnknownSubtype{Subtype: req.Request.Subtype}
	} else {
		switch req.Request.Subtype {
		case "can_use_tool":
			value, err = h.dispatcher.DispatchCanUseTool(ctx, req.Request)
		case "hook_callback":
			value, err = h.dispatcher.DispatchHookCallback(ctx, req.Request)
		case "mcp_message":
			value, err = h.dispatcher.DispatchMCPMessage(ctx, req.Request)
		default:
			err = &ErrProtocolUnknownSubtype{Subtype: req.Request.Subtype}
		}
	}

	resp := ControlResponse{
		Type: "control_response",
		Response: ControlResponseBody{
			RequestID: req.RequestID,
		},
	}
	if err != nil {
		resp.Response.Subtype = "error"
		resp.Response.Error = err.Error()
	} else {
		resp.Response.Subtype = "success"
		resp.Response.Response = value
	}

	_ = h.transport.Write(ctx, resp)
}

// marshalToMap round-trips v through JSON to produce a
// map[string]interface{} suitable for ControlResponseBody.Response.
func marshalToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
