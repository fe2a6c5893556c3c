package agentcli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Session owns one Agent CLI subprocess and its associated protocol
// state: the transport, the control handler, the hook registry, and the
// tool router. It runs the message loop that is the sole reader of the
// transport's decoded stream, and serializes every user-initiated
// control call through the control handler's pending-request table.
type Session struct {
	transport *Transport
	control   *ControlHandler
	hooks     *HookRegistry
	router    *ToolRouter
	options   *Options

	mu            sync.Mutex
	sessionID     string
	initialized   bool
	closed        bool
	toolConfigTmp string

	out      chan StreamItem
	loopDone chan struct{}
	closeOnce sync.Once
}

// NewSession constructs a Session from Options without starting it. The
// CLI executable is resolved immediately so a bad CLIPath/PATH surfaces
// before any subprocess work begins.
func NewSession(options *Options, runner SubprocessRunner) (*Session, error) {
	if options == nil {
		options = NewOptions()
	}

	transport, err := NewTransport(options, runner)
	if err != nil {
		return nil, err
	}

	s := &Session{
		transport: transport,
		hooks:     NewHookRegistry(),
		router:    NewToolRouter(options.SDKMcpServers),
		options:   options,
		out:       make(chan StreamItem, 16),
		loopDone:  make(chan struct{}),
	}
	s.hooks.RegisterFromOptions(options.Hooks)
	s.control = NewControlHandler(transport, s)
	return s, nil
}

// needsInitialize reports whether any feature requiring the initialize
// handshake is configured.
func (s *Session) needsInitialize() bool {
	return len(s.options.Hooks) > 0 ||
		len(s.options.SDKMcpServers) > 0 ||
		s.options.CanUseTool != nil ||
		(s.options.SystemPromptPreset != nil && s.options.SystemPromptPreset.Append != "")
}

// Start spawns the subprocess and begins the message loop. It does not
// perform the initialize handshake; callers must await Initialize after
// Start returns, per the documented ordering (loop must be running
// before initialize is awaited, since its response arrives on the loop).
func (s *Session) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		return err
	}
	stream, err := s.transport.ReadMessages()
	if err != nil {
		return err
	}
	go s.runLoop(ctx, stream)
	return nil
}

// runLoop is the session's single reader of the transport's decoded
// stream. Regular messages are forwarded to the user-visible channel;
// control messages are routed to the control handler. Nothing here
// blocks on a hook/tool/permission handler: HandleControlRequest hands
// that off to its own goroutine immediately.
func (s *Session) runLoop(ctx context.Context, stream <-chan StreamItem) {
	defer close(s.loopDone)
	defer close(s.out)

	for item := range stream {
		if item.Err != nil {
			s.out <- item
			return
		}

		switch m := item.Message.(type) {
		case SystemMessage:
			if m.Subtype == "init" {
				s.mu.Lock()
				s.sessionID = m.SessionID
				s.mu.Unlock()
			}
			s.out <- StreamItem{Message: m}

		case ControlRequest:
			s.control.HandleControlRequest(ctx, m)

		case ControlResponse:
			s.control.HandleControlResponse(m.Response)

		case ControlCancelRequest:
			s.control.HandleControlCancelRequest(m.RequestID)

		case KeepAliveMessage:
			// no-op

		default:
			s.out <- StreamItem{Message: item.Message}
		}
	}
}

// Messages returns the user-visible stream: every Regular message the
// CLI emits, in emission order, until the transport ends or errors.
func (s *Session) Messages() <-chan StreamItem {
	return s.out
}

// SessionID returns the most recent session id reported by the CLI's
// init system message, or "" before that message has arrived.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Initialize performs the initialize control handshake if any
// hook/tool-server/permission/system-prompt feature requires it;
// otherwise it's a no-op. Must be called after Start, before the first
// user prompt is written.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if !s.needsInitialize() {
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		return nil
	}

	if err := s.materializeToolConfig(); err != nil {
		return &ErrSessionInitializationFailed{Cause: err}
	}

	body := ControlRequestBody{
		Hooks:         s.hooks.GetHookConfig(),
		SDKMCPServers: s.router.ServerNames(),
	}
	if s.options.SystemPrompt != "" {
		body.SystemPrompt = s.options.SystemPrompt
	}
	if s.options.SystemPromptPreset != nil {
		body.AppendSystemPrompt = s.options.SystemPromptPreset.Append
	}

	if _, err := s.control.SendRequest(ctx, "initialize", body, 0); err != nil {
		return &ErrSessionInitializationFailed{Cause: err}
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// materializeToolConfig writes a temp file describing the in-process
// tool servers' schemas. Its lifetime belongs to the session: created
// here, removed unconditionally in Close, including on error paths —
// unlike a bare "write and forget" this never leaks a stale file if the
// session errors out before closing normally.
func (s *Session) materializeToolConfig() error {
	if len(s.options.SDKMcpServers) == 0 {
		return nil
	}

	payload := make(map[string]interface{}, len(s.options.SDKMcpServers))
	for name, server := range s.options.SDKMcpServers {
		payload[name] = server.ToolDefs()
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "agentcli-sdk-tools-*.json")
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return err
	}

	s.mu.Lock()
	s.toolConfigTmp = f.Name()
	s.mu.Unlock()
	return nil
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &ErrSessionClosed{}
	}
	return nil
}

// Interrupt requests the CLI stop the current turn.
func (s *Session) Interrupt(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, err := s.control.SendRequest(ctx, "interrupt", ControlRequestBody{}, 0)
	return err
}

// SetModel changes the model for subsequent turns. A nil model clears
// any override.
func (s *Session) SetModel(ctx context.Context, model *string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	body := ControlRequestBody{}
	if model != nil {
		body.Model = *model
	}
	_, err := s.control.SendRequest(ctx, "set_model", body, 0)
	return err
}

// SetPermissionMode changes the active permission mode.
func (s *Session) SetPermissionMode(ctx context.Context, mode PermissionMode) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, err := s.control.SendRequest(ctx, "set_permission_mode", ControlRequestBody{Mode: string(mode)}, 0)
	return err
}

// SetMaxThinkingTokens changes the thinking-token budget. A nil value
// clears any override.
func (s *Session) SetMaxThinkingTokens(ctx context.Context, n *int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, err := s.control.SendRequest(ctx, "set_max_thinking_tokens", ControlRequestBody{MaxThinkingTokens: n}, 0)
	return err
}

// RewindFiles requests the CLI revert file edits made since
// userMessageID. dryRun requests a report without applying the revert.
func (s *Session) RewindFiles(ctx context.Context, userMessageID string, dryRun bool) (map[string]interface{}, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.control.SendRequest(ctx, "rewind_files", ControlRequestBody{
		UserMessageID: userMessageID,
		DryRun:        dryRun,
	}, 0)
}

// mcpStatusResponse is the wire shape of the CLI's mcp_status response:
// a list of per-server status entries under "servers". The spec leaves
// this response CLI-defined; this is the shape observed in practice.
type mcpStatusResponse struct {
	Servers []McpServerStatus `json:"servers"`
}

// MCPStatus returns the CLI's current MCP server status report, decoded
// into McpServerStatus/McpServerInfo. Fields the CLI adds later decode
// as zero values rather than failing the call.
func (s *Session) MCPStatus(ctx context.Context) ([]McpServerStatus, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	raw, err := s.control.SendRequest(ctx, "mcp_status", ControlRequestBody{}, 0)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var resp mcpStatusResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return resp.Servers, nil
}

// MCPReconnect asks the CLI to reconnect the named external MCP server.
func (s *Session) MCPReconnect(ctx context.Context, name string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, err := s.control.SendRequest(ctx, "mcp_reconnect", ControlRequestBody{ServerName: name}, 0)
	return err
}

// MCPToggle enables or disables the named external MCP server.
func (s *Session) MCPToggle(ctx context.Context, name string, enabled bool) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, err := s.control.SendRequest(ctx, "mcp_toggle", ControlRequestBody{
		ServerName: name,
		Enabled:    enabled,
	}, 0)
	return err
}

// WritePrompt serializes a user message and writes it to the CLI's
// stdin. Exposed so the Query Facade can keep transport details out of
// its own layer.
func (s *Session) WritePrompt(ctx context.Context, msg UserMessage) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.transport.Write(ctx, msg)
}

// EndInput signals end-of-stdin to the CLI, used by the streaming-input
// query variant once the caller's input sequence is exhausted.
func (s *Session) EndInput() error {
	return s.transport.EndInput()
}

// Close is idempotent: it cancels the message loop (by closing the
// transport, which ends the underlying stream), drains every
// outstanding pending control request with SessionClosed, removes any
// temp tool-config file, and marks the session closed. Further public
// calls observe ErrSessionClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		tmp := s.toolConfigTmp
		s.mu.Unlock()

		s.control.CancelAll(&ErrSessionClosed{})
		_ = s.transport.Close()
		<-s.loopDone

		if tmp != "" {
			os.Remove(tmp)
		}
	})
	return nil
}

// --- InboundDispatcher ---

// DispatchCanUseTool answers an inbound can_use_tool control request by
// invoking the configured permission handler. If none is configured,
// the CLI's request is answered with an error response rather than
// silently dropped.
func (s *Session) DispatchCanUseTool(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error) {
	if s.options.CanUseTool == nil {
		return nil, fmt.Errorf("agentcli: no permission handler registered")
	}

	rawInput, err := json.Marshal(body.Input)
	if err != nil {
		return nil, err
	}

	result := s.options.CanUseTool(ctx, ToolPermissionRequest{
		ToolName:  body.ToolName,
		Arguments: rawInput,
		Context: PermissionContext{
			SessionID: s.SessionID(),
			ToolUseID: body.ToolUseID,
			AgentID:   body.AgentID,
		},
	})

	if result.IsAllow() {
		return map[string]interface{}{"behavior": "allow"}, nil
	}
	reason := ""
	if deny, ok := result.(PermissionDeny); ok {
		reason = deny.Reason
	}
	return map[string]interface{}{"behavior": "deny", "message": reason}, nil
}

// DispatchHookCallback answers an inbound hook_callback control request
// by invoking the registered hook handler for its callback_id.
func (s *Session) DispatchHookCallback(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error) {
	rawInput, err := json.Marshal(body.Input)
	if err != nil {
		return nil, err
	}
	out, err := s.hooks.Dispatch(ctx, body.CallbackID, rawInput)
	if err != nil {
		return nil, err
	}
	return buildHookResponse(out)
}

// DispatchMCPMessage answers an inbound mcp_message control request by
// routing its JSON-RPC envelope to the named in-process tool server.
func (s *Session) DispatchMCPMessage(ctx context.Context, body ControlRequestBody) (map[string]interface{}, error) {
	raw, err := json.Marshal(body.Message)
	if err != nil {
		return nil, err
	}
	resp, err := s.router.HandleMessage(ctx, body.ServerName, raw)
	if err != nil {
		return nil, err
	}
	return marshalToMap(resp)
}
