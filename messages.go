package agentcli

import (
	"encoding/json"
	"time"
)

// Message is the base interface for everything exchanged over the
// subprocess's stdout stream.
//
// A line from the CLI decodes to exactly one of five shapes: a Regular
// message (user/assistant/system/result/...), a ControlRequest, a
// ControlResponse, a ControlCancelRequest, or a KeepAlive. ParseMessage
// performs that classification.
type Message interface {
	MessageType() string
}

// UserMessage represents a user prompt sent to the agent.
//
// ParentToolUseID links this message to a specific tool call when it
// carries a tool result rather than a fresh prompt.
type UserMessage struct {
	Type            string         `json:"type"`
	UUID            string         `json:"uuid,omitempty"`
	SessionID       string         `json:"session_id"`
	Message         APIUserMessage `json:"message"`
	ParentToolUseID *string        `json:"parent_tool_use_id"`
	IsSynthetic     bool           `json:"isSynthetic,omitempty"`
	ToolUseResult   interface{}    `json:"tool_use_result,omitempty"`
}

// APIUserMessage is the message content in Anthropic-style API format.
type APIUserMessage struct {
	Role    string              `json:"role"`
	Content []UserContentBlock  `json:"content"`
}

// UserContentBlock is a content block inside a user message.
type UserContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessageType implements Message.
func (m UserMessage) MessageType() string { return "user" }

// AssistantMessage represents a response from the model.
type AssistantMessage struct {
	Type      string `json:"type"`
	UUID      string `json:"uuid,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Message   struct {
		Role    string         `json:"role"`
		Content []ContentBlock `json:"content"`
	} `json:"message"`
	ParentToolUseID *string `json:"parent_tool_use_id,omitempty"`
	Usage           *Usage  `json:"usage,omitempty"`
}

// MessageType implements Message.
func (m AssistantMessage) MessageType() string { return "assistant" }

// ContentText concatenates every text content block, ignoring tool_use
// and thinking blocks.
func (m AssistantMessage) ContentText() string {
	var text string
	for _, block := range m.Message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}

// ContentBlock is one element of an assistant message: text, tool_use, or
// thinking.
type ContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// ResultMessage signals completion of a conversation turn.
type ResultMessage struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Subtype string `json:"subtype,omitempty"`

	UUID      string `json:"uuid,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	Result string   `json:"result,omitempty"`
	Errors []string `json:"errors,omitempty"`

	DurationMs    int64 `json:"duration_ms,omitempty"`
	DurationAPIMs int64 `json:"duration_api_ms,omitempty"`
	IsError       bool  `json:"is_error,omitempty"`
	NumTurns      int   `json:"num_turns,omitempty"`

	TotalCostUSD float64 `json:"total_cost_usd,omitempty"`

	Usage      *NonNullableUsage     `json:"usage,omitempty"`
	ModelUsage map[string]ModelUsage `json:"modelUsage,omitempty"`

	PermissionDenials []PermissionDenial `json:"permission_denials,omitempty"`
	StructuredOutput  interface{}        `json:"structured_output,omitempty"`
}

// MessageType implements Message.
func (m ResultMessage) MessageType() string { return "result" }

// StreamEvent is a progressive delta update during streaming output.
type StreamEvent struct {
	Type      string    `json:"type"`
	Event     string    `json:"event"`
	Delta     string    `json:"delta,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageType implements Message.
func (m StreamEvent) MessageType() string { return "stream_event" }

// TodoUpdateMessage carries task tracking updates.
type TodoUpdateMessage struct {
	Type  string     `json:"type"`
	Items []TodoItem `json:"items"`
}

// MessageType implements Message.
func (m TodoUpdateMessage) MessageType() string { return "todo_update" }

// TodoItem is one entry in a todo list update.
type TodoItem struct {
	Content    string     `json:"content"`
	ActiveForm string     `json:"activeForm"`
	Status     TodoStatus `json:"status"`
}

// TodoStatus is the lifecycle state of a TodoItem.
type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
)

// SubagentResultMessage carries the outcome of a subagent invocation.
type SubagentResultMessage struct {
	Type      string `json:"type"`
	AgentName string `json:"agent_name"`
	Status    string `json:"status"`
	Result    string `json:"result"`
}

// MessageType implements Message.
func (m SubagentResultMessage) MessageType() string { return "subagent_result" }

// ControlRequest is a control-protocol request sent from the CLI to the
// SDK (permission checks, hook callbacks, in-process tool calls) or from
// the SDK to the CLI (initialize, interrupt, set_model, ...).
type ControlRequest struct {
	Type      string             `json:"type"`
	RequestID string             `json:"request_id"`
	Request   ControlRequestBody `json:"request"`
}

// ControlRequestBody is a union of fields used by different subtypes.
// Unused fields are omitted on the wire.
type ControlRequestBody struct {
	Subtype            string                   `json:"subtype"`
	Hooks              map[string][]HookMatcher `json:"hooks,omitempty"`
	SDKMCPServers      []string                 `json:"sdkMcpServers,omitempty"`
	SystemPrompt       string                   `json:"systemPrompt,omitempty"`
	AppendSystemPrompt string                   `json:"appendSystemPrompt,omitempty"`
	ToolName           string                   `json:"tool_name,omitempty"`
	Input              map[string]interface{}   `json:"input,omitempty"`
	ToolUseID          string                   `json:"tool_use_id,omitempty"`
	AgentID            string                   `json:"agent_id,omitempty"`
	CallbackID         string                   `json:"callback_id,omitempty"`
	Mode               string                   `json:"mode,omitempty"`
	Model              string                   `json:"model,omitempty"`
	MaxThinkingTokens  *int                     `json:"max_thinking_tokens,omitempty"`
	UserMessageID      string                   `json:"user_message_id,omitempty"`
	ServerName         string                   `json:"server_name,omitempty"`
	Message            map[string]interface{}   `json:"message,omitempty"`
	DryRun             bool                     `json:"dry_run,omitempty"`
	Enabled            bool                     `json:"enabled,omitempty"`
}

// HookMatcher pairs a tool-name matcher with the callback IDs registered
// for that event.
type HookMatcher struct {
	Matcher         string   `json:"matcher,omitempty"`
	HookCallbackIDs []string `json:"hookCallbackIds"`
	Timeout         int      `json:"timeout,omitempty"`
}

// MessageType implements Message.
func (m ControlRequest) MessageType() string { return "control_request" }

// ControlResponse correlates to a ControlRequest via RequestID.
type ControlResponse struct {
	Type     string              `json:"type"`
	Response ControlResponseBody `json:"response"`
}

// ControlResponseBody is the response payload.
type ControlResponseBody struct {
	Subtype   string                 `json:"subtype"`
	RequestID string                 `json:"request_id"`
	Response  map[string]interface{} `json:"response,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// MessageType implements Message.
func (m ControlResponse) MessageType() string { return "control_response" }

// ControlCancelRequest cancels a pending control request.
type ControlCancelRequest struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
}

// MessageType implements Message.
func (m ControlCancelRequest) MessageType() string { return "control_cancel_request" }

// KeepAliveMessage is a heartbeat with no semantic payload. Unknown
// fields on a keep_alive line are tolerated, never rejected.
type KeepAliveMessage struct {
	Type string `json:"type"`
}

// MessageType implements Message.
func (m KeepAliveMessage) MessageType() string { return "keep_alive" }

// Usage tracks token consumption for a single assistant message.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost"`
}

// SystemMessage is emitted at the start of a session with tool/model/MCP
// inventory.
type SystemMessage struct {
	Type           string          `json:"type"`
	Subtype        string          `json:"subtype"`
	UUID           string          `json:"uuid"`
	SessionID      string          `json:"session_id"`
	Cwd            string          `json:"cwd"`
	Tools          []string        `json:"tools"`
	MCPServers     []MCPServerInfo `json:"mcp_servers"`
	Model          string          `json:"model"`
	PermissionMode PermissionMode  `json:"permissionMode"`
	SlashCommands  []string        `json:"slash_commands"`
}

// MessageType implements Message.
func (m SystemMessage) MessageType() string { return "system" }

// MCPServerInfo is status information about one configured MCP server.
type MCPServerInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// CompactBoundaryMessage marks a context-compaction boundary.
type CompactBoundaryMessage struct {
	Type            string          `json:"type"`
	Subtype         string          `json:"subtype"`
	UUID            string          `json:"uuid"`
	SessionID       string          `json:"session_id"`
	CompactMetadata CompactMetadata `json:"compact_metadata"`
}

// MessageType implements Message.
func (m CompactBoundaryMessage) MessageType() string { return "system" }

// CompactMetadata describes a compaction event.
type CompactMetadata struct {
	Trigger   string `json:"trigger"`
	PreTokens int    `json:"pre_tokens"`
}

// PermissionDenial records one denied permission during a turn.
type PermissionDenial struct {
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
	Reason    string          `json:"reason"`
}

// ModelUsage tracks per-model usage for multi-model sessions.
type ModelUsage struct {
	InputTokens              int     `json:"inputTokens"`
	OutputTokens             int     `json:"outputTokens"`
	CacheReadInputTokens     int     `json:"cacheReadInputTokens"`
	CacheCreationInputTokens int     `json:"cacheCreationInputTokens"`
	CostUSD                  float64 `json:"costUSD"`
}

// NonNullableUsage is cumulative usage reported on a ResultMessage.
type NonNullableUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

// ParseMessage classifies a single JSON line into its concrete Message
// type.
//
// Unlike a typical decoder, ParseMessage never returns an error for an
// unrecognized or malformed line: callers are expected to use ParseChunk
// (parser.go), which silently drops lines ParseMessage can't classify.
// ParseMessage itself stays a pure function so it can be unit-tested
// against every documented wire shape directly.
func ParseMessage(data []byte) (Message, bool) {
	var typeOnly struct {
		Type    string `json:"type"`
		Subtype string `json:"subtype"`
	}
	if err := json.Unmarshal(data, &typeOnly); err != nil {
		return nil, false
	}

	switch typeOnly.Type {
	case "user":
		var msg UserMessage
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "assistant":
		var msg AssistantMessage
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "result":
		var msg ResultMessage
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "stream_event":
		var msg StreamEvent
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "system":
		if typeOnly.Subtype == "compact_boundary" {
			var msg CompactBoundaryMessage
			if json.Unmarshal(data, &msg) != nil {
				return nil, false
			}
			return msg, true
		}
		var msg SystemMessage
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "todo_update":
		var msg TodoUpdateMessage
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "subagent_result":
		var msg SubagentResultMessage
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "control_request":
		var msg ControlRequest
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "control_response":
		var msg ControlResponse
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "control_cancel_request":
		var msg ControlCancelRequest
		if json.Unmarshal(data, &msg) != nil {
			return nil, false
		}
		return msg, true

	case "keep_alive":
		return KeepAliveMessage{Type: "keep_alive"}, true

	default:
		return nil, false
	}
}
