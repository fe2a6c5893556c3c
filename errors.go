package agentcli

import "fmt"

// Errors are grouped by subsystem. Each is a distinct type so callers can
// errors.As against the exact failure instead of matching on strings.

// ErrTransportNotConnected is returned when an operation requires a live
// transport but Start has not been called (or Close already ran). A
// second call to Start also returns it.
type ErrTransportNotConnected struct{}

func (e *ErrTransportNotConnected) Error() string { return "transport: not connected" }

// ErrTransportAlreadyConsumed is returned by ReadMessages when the stream
// has already been consumed by an earlier call. Only one consumer may ever
// drain a transport's message stream.
type ErrTransportAlreadyConsumed struct{}

func (e *ErrTransportAlreadyConsumed) Error() string {
	return "transport: message stream already consumed"
}

// ErrTransportProcessExited indicates the subprocess exited before or
// during the operation.
type ErrTransportProcessExited struct {
	Cause error
}

func (e *ErrTransportProcessExited) Error() string {
	if e.Cause == nil {
		return "transport: process exited"
	}
	return fmt.Sprintf("transport: process exited: %v", e.Cause)
}

func (e *ErrTransportProcessExited) Unwrap() error { return e.Cause }

// ErrTransportSpawnFailed indicates the subprocess could not be started.
type ErrTransportSpawnFailed struct {
	Cause error
}

func (e *ErrTransportSpawnFailed) Error() string {
	return fmt.Sprintf("transport: spawn failed: %v", e.Cause)
}

func (e *ErrTransportSpawnFailed) Unwrap() error { return e.Cause }

// ErrProtocolTimeout is returned when a control request receives no
// response within its timeout.
type ErrProtocolTimeout struct {
	RequestID string
}

func (e *ErrProtocolTimeout) Error() string {
	return fmt.Sprintf("protocol: request %s timed out", e.RequestID)
}

// ErrProtocolCancelled is returned when a pending control request is
// cancelled, either by the caller's context or an explicit cancel.
type ErrProtocolCancelled struct {
	RequestID string
}

func (e *ErrProtocolCancelled) Error() string {
	return fmt.Sprintf("protocol: request %s cancelled", e.RequestID)
}

// ErrProtocolResponseError wraps an error response returned by the CLI for
// a control request.
type ErrProtocolResponseError struct {
	RequestID string
	Message   string
}

func (e *ErrProtocolResponseError) Error() string {
	return fmt.Sprintf("protocol: request %s failed: %s", e.RequestID, e.Message)
}

// ErrProtocolUnknownSubtype indicates a control request carried a subtype
// this SDK does not recognize.
type ErrProtocolUnknownSubtype struct {
	Subtype string
}

func (e *ErrProtocolUnknownSubtype) Error() string {
	return fmt.Sprintf("protocol: unknown control request subtype: %s", e.Subtype)
}

// ErrProtocolInvalidMessage indicates a structurally invalid control
// message (missing required field, wrong shape) was received.
type ErrProtocolInvalidMessage struct {
	Reason string
}

func (e *ErrProtocolInvalidMessage) Error() string {
	return fmt.Sprintf("protocol: invalid message: %s", e.Reason)
}

// ErrHookCallbackNotFound is returned when the CLI invokes a callback_id
// that was never registered.
type ErrHookCallbackNotFound struct {
	CallbackID string
}

func (e *ErrHookCallbackNotFound) Error() string {
	return fmt.Sprintf("hook: callback not found: %s", e.CallbackID)
}

// ErrHookUnsupportedEvent is returned when a hook_event_name does not
// match any known HookType.
type ErrHookUnsupportedEvent struct {
	Event string
}

func (e *ErrHookUnsupportedEvent) Error() string {
	return fmt.Sprintf("hook: unsupported event: %s", e.Event)
}

// ErrHookInvalidInput indicates the hook payload could not be decoded
// into the expected input shape for its event type.
type ErrHookInvalidInput struct {
	Event  string
	Reason string
}

func (e *ErrHookInvalidInput) Error() string {
	return fmt.Sprintf("hook: invalid input for %s: %s", e.Event, e.Reason)
}

// ErrHookTimeout indicates a hook callback did not return within its
// configured timeout.
type ErrHookTimeout struct {
	CallbackID string
}

func (e *ErrHookTimeout) Error() string {
	return fmt.Sprintf("hook: callback %s timed out", e.CallbackID)
}

// ErrToolServerNotFound indicates a mcp_message referenced a server name
// that was never registered.
type ErrToolServerNotFound struct {
	ServerName string
}

func (e *ErrToolServerNotFound) Error() string {
	return fmt.Sprintf("tool: server not found: %s", e.ServerName)
}

// ErrToolNotFound indicates a tools/call referenced a tool name the server
// does not expose.
type ErrToolNotFound struct {
	ServerName string
	ToolName   string
}

func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: %s not found on server %s", e.ToolName, e.ServerName)
}

// ErrToolInvalidArguments indicates a tools/call's arguments could not be
// decoded into the tool's Args type.
type ErrToolInvalidArguments struct {
	ToolName string
	Cause    error
}

func (e *ErrToolInvalidArguments) Error() string {
	return fmt.Sprintf("tool: invalid arguments for %s: %v", e.ToolName, e.Cause)
}

func (e *ErrToolInvalidArguments) Unwrap() error { return e.Cause }

// ErrToolUnknownMethod indicates an unrecognized JSON-RPC method on the
// in-process router.
type ErrToolUnknownMethod struct {
	Method string
}

func (e *ErrToolUnknownMethod) Error() string {
	return fmt.Sprintf("tool: unknown method: %s", e.Method)
}

// ErrSessionClosed indicates an operation was attempted on a Session that
// has already been closed.
type ErrSessionClosed struct{}

func (e *ErrSessionClosed) Error() string { return "session: closed" }

// ErrSessionNotInitialized indicates an operation requires the control
// protocol handshake to have completed first.
type ErrSessionNotInitialized struct{}

func (e *ErrSessionNotInitialized) Error() string { return "session: not initialized" }

// ErrSessionInitializationFailed wraps a failure during the initialize
// control exchange.
type ErrSessionInitializationFailed struct {
	Cause error
}

func (e *ErrSessionInitializationFailed) Error() string {
	return fmt.Sprintf("session: initialization failed: %v", e.Cause)
}

func (e *ErrSessionInitializationFailed) Unwrap() error { return e.Cause }

// ErrQueryLaunchFailed wraps a failure to stand up a session for a query
// (CLI discovery, spawn, or initialization).
type ErrQueryLaunchFailed struct {
	Cause error
}

func (e *ErrQueryLaunchFailed) Error() string {
	return fmt.Sprintf("query: launch failed: %v", e.Cause)
}

func (e *ErrQueryLaunchFailed) Unwrap() error { return e.Cause }

// ErrQueryInvalidOptions indicates the Options passed to Query/OpenSession
// fail validation.
type ErrQueryInvalidOptions struct {
	Field  string
	Reason string
}

func (e *ErrQueryInvalidOptions) Error() string {
	return fmt.Sprintf("query: invalid option %s: %s", e.Field, e.Reason)
}

// ErrCLINotFound indicates the agent CLI executable could not be located
// in the system PATH or at the configured path.
type ErrCLINotFound struct {
	Path string
}

func (e *ErrCLINotFound) Error() string {
	if e.Path == "" {
		return "agent CLI not found in PATH"
	}
	return fmt.Sprintf("agent CLI not found at: %s", e.Path)
}

// ErrCLIVersionIncompatible indicates the installed CLI's version does not
// meet the minimum required version.
type ErrCLIVersionIncompatible struct {
	Found    string
	Required string
}

func (e *ErrCLIVersionIncompatible) Error() string {
	return fmt.Sprintf("agent CLI version %s is incompatible (required: %s)", e.Found, e.Required)
}
