package agentcli

import (
	"context"
	"encoding/json"
)

// Options holds configuration for an agent session.
//
// Options are provided via functional options passed to Query, OpenSession,
// or NewSession. All fields have sensible defaults and can be selectively
// overridden.
type Options struct {
	// SystemPrompt is the system prompt sent to the agent.
	// Can be a string or SystemPromptPreset for preset prompts.
	SystemPrompt string

	// SystemPromptPreset uses a preset system prompt configuration.
	SystemPromptPreset *SystemPromptConfig

	// Model specifies which model the CLI should use.
	Model string

	// FallbackModel is the model to use if the primary model fails.
	FallbackModel string

	// CLIPath is the path to the agent CLI executable.
	// If empty, the CLI will be discovered from PATH.
	CLIPath string

	// Cwd is the current working directory for the agent.
	Cwd string

	// AdditionalDirectories are additional directories the agent can access.
	AdditionalDirectories []string

	// Env holds environment variables to pass to the CLI subprocess.
	Env map[string]string

	// PermissionMode controls tool execution permissions.
	// Default: PermissionModeDefault
	PermissionMode PermissionMode

	// AllowDangerouslySkipPermissions enables bypassing permissions.
	// Required when using PermissionModeBypassAll.
	AllowDangerouslySkipPermissions bool

	// CanUseTool is a callback invoked before tool execution.
	// Return PermissionAllow to proceed or PermissionDeny to block.
	CanUseTool CanUseToolFunc

	// Hooks register lifecycle callbacks for events like tool use.
	Hooks map[HookType][]HookConfig

	// Agents defines specialized subagents for task delegation.
	Agents map[string]AgentDefinition

	// SessionOptions configure session behavior (create/resume/fork).
	SessionOptions SessionOptions

	// MCPServers configure out-of-process MCP servers for custom tool
	// integration.
	MCPServers map[string]MCPServerConfig

	// SettingSources controls which filesystem settings to load.
	// When omitted, no filesystem settings are loaded (SDK default).
	SettingSources []SettingSource

	// Sandbox configures sandbox behavior programmatically.
	Sandbox *SandboxSettings

	// Betas enables beta features.
	Betas []string

	// Plugins loads custom plugins from local paths.
	Plugins []PluginConfig

	// OutputFormat defines structured output format for agent results.
	OutputFormat *OutputFormat

	// AllowedTools is a list of allowed tool names.
	// If empty, all tools are allowed.
	AllowedTools []string

	// DisallowedTools is a list of disallowed tool names.
	DisallowedTools []string

	// Tools configures available tools.
	Tools *ToolsConfig

	// MaxBudgetUsd is the maximum budget in USD for the query.
	MaxBudgetUsd *float64

	// MaxThinkingTokens is the maximum tokens for the thinking process.
	MaxThinkingTokens *int

	// MaxTurns is the maximum conversation turns.
	MaxTurns *int

	// EnableFileCheckpointing enables file change tracking for rewinding.
	EnableFileCheckpointing bool

	// IncludePartialMessages includes partial message events in the stream.
	IncludePartialMessages bool

	// Continue continues the most recent conversation.
	Continue bool

	// Stderr is a callback for stderr output from the CLI.
	Stderr func(data string)

	// Verbose enables debug logging from the CLI.
	Verbose bool

	// NoSessionPersistence disables session persistence - sessions will not
	// be saved to disk and cannot be resumed. Useful for testing.
	NoSessionPersistence bool

	// ConfigDir overrides the agent CLI's config directory. Set this to
	// isolate from user settings, hooks, and sessions.
	ConfigDir string

	// StrictMCPConfig when true, only uses MCP servers from MCPServers
	// config, ignoring all other MCP configurations from settings files.
	StrictMCPConfig bool

	// SDKMcpServers are in-process MCP servers that run within the SDK.
	// Tool calls to these servers are routed through the control channel
	// rather than spawning separate processes. Use WithMcpServer to add
	// servers.
	SDKMcpServers map[string]*McpServer
}

// SystemPromptConfig represents system prompt configuration.
type SystemPromptConfig struct {
	Type   string // "preset"
	Preset string
	Append string // Additional instructions to append
}

// SettingSource represents a filesystem settings source.
type SettingSource string

const (
	// SettingSourceUser loads global user settings.
	SettingSourceUser SettingSource = "user"
	// SettingSourceProject loads shared project settings.
	SettingSourceProject SettingSource = "project"
	// SettingSourceLocal loads local project settings.
	SettingSourceLocal SettingSource = "local"
)

// SandboxSettings configures sandbox behavior.
type SandboxSettings struct {
	Enabled                   bool
	AutoAllowBashIfSandboxed  bool
	ExcludedCommands          []string
	AllowUnsandboxedCommands  bool
	Network                   *NetworkSandboxSettings
	IgnoreViolations          *SandboxIgnoreViolations
	EnableWeakerNestedSandbox bool
}

// NetworkSandboxSettings configures network-specific sandbox behavior.
type NetworkSandboxSettings struct {
	AllowLocalBinding   bool
	AllowUnixSockets    []string
	AllowAllUnixSockets bool
	HttpProxyPort       *int
	SocksProxyPort      *int
}

// SandboxIgnoreViolations configures which sandbox violations to ignore.
type SandboxIgnoreViolations struct {
	File    []string
	Network []string
}

// PluginConfig configures a plugin to load.
type PluginConfig struct {
	// Type must be "local" (only local plugins currently supported).
	Type string
	Path string
}

// OutputFormat defines structured output format for agent results.
type OutputFormat struct {
	// Type must be "json_schema".
	Type   string
	Schema interface{}
}

// ToolsConfig configures available tools.
type ToolsConfig struct {
	Type   string // "preset" for preset configuration
	Preset string
	Tools  []string
}

// NewOptions creates a new Options with sensible defaults.
func NewOptions() *Options {
	return &Options{
		PermissionMode: PermissionModeDefault,
		Env:            make(map[string]string),
		Hooks:          make(map[HookType][]HookConfig),
		Agents:         make(map[string]AgentDefinition),
		MCPServers:     make(map[string]MCPServerConfig),
	}
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		PermissionMode: PermissionModeDefault,
		Env:            make(map[string]string),
		Hooks:          make(map[HookType][]HookConfig),
		Agents:         make(map[string]AgentDefinition),
		MCPServers:     make(map[string]MCPServerConfig),
		Verbose:        false,
	}
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// WithSystemPrompt sets the system prompt sent to the agent.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) { o.SystemPrompt = prompt }
}

// WithModel specifies which model the CLI should use.
func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// WithCLIPath sets the path to the agent CLI executable.
//
// If not specified, the CLI will be discovered from the system PATH.
func WithCLIPath(path string) Option {
	return func(o *Options) { o.CLIPath = path }
}

// WithEnv adds environment variables for the CLI subprocess.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithPermissionMode sets the permission mode for tool execution.
func WithPermissionMode(mode PermissionMode) Option {
	return func(o *Options) { o.PermissionMode = mode }
}

// WithCanUseTool sets a callback for runtime permission decisions.
//
// This callback is invoked before each tool execution and can inspect
// the tool name and arguments to make allow/deny decisions.
func WithCanUseTool(fn CanUseToolFunc) Option {
	return func(o *Options) { o.CanUseTool = fn }
}

// WithHooks registers lifecycle callbacks.
//
// Example:
//
//	WithHooks(map[HookType][]HookConfig{
//	    HookTypePreToolUse: {
//	        {Matcher: "*", Callback: logToolUse},
//	    },
//	})
func WithHooks(hooks map[HookType][]HookConfig) Option {
	return func(o *Options) { o.Hooks = hooks }
}

// WithAgents defines specialized subagents for task delegation.
//
// The agent automatically invokes the appropriate subagent based on task
// context and agent descriptions.
func WithAgents(agents map[string]AgentDefinition) Option {
	return func(o *Options) { o.Agents = agents }
}

// WithSessionOptions configures session behavior.
//
// Use this to resume existing sessions or fork from a checkpoint.
func WithSessionOptions(opts SessionOptions) Option {
	return func(o *Options) { o.SessionOptions = opts }
}

// WithResume resumes an existing session by ID.
//
// This is a convenience wrapper around WithSessionOptions.
func WithResume(sessionID string) Option {
	return func(o *Options) { o.SessionOptions.Resume = sessionID }
}

// WithForkSession creates a branch from an existing session.
//
// This is a convenience wrapper around WithSessionOptions.
func WithForkSession(sessionID string) Option {
	return func(o *Options) { o.SessionOptions.ForkFrom = sessionID }
}

// WithForkOnResume forks to a new session ID when resuming.
func WithForkOnResume(fork bool) Option {
	return func(o *Options) { o.SessionOptions.ForkSession = fork }
}

// WithResumeSessionAt resumes a session at a specific message UUID.
func WithResumeSessionAt(messageUUID string) Option {
	return func(o *Options) { o.SessionOptions.ResumeSessionAt = messageUUID }
}

// WithMCPServers configures out-of-process MCP servers for custom tool
// integration.
func WithMCPServers(servers map[string]MCPServerConfig) Option {
	return func(o *Options) { o.MCPServers = servers }
}

// WithMcpServer adds an in-process MCP server.
//
// In-process MCP servers run within the SDK process. Tool calls are
// routed through the control channel rather than spawning a separate
// process. This is useful for defining custom tools without building
// separate binaries.
//
// Example:
//
//	server := agentcli.CreateMcpServer(agentcli.McpServerOptions{
//	    Name: "calculator",
//	})
//	agentcli.AddTool(server, agentcli.ToolDef{
//	    Name:        "add",
//	    Description: "Add two numbers",
//	}, addHandler)
//
//	opts := append(defaultOpts, agentcli.WithMcpServer("calculator", server))
func WithMcpServer(name string, server *McpServer) Option {
	return func(o *Options) {
		if o.SDKMcpServers == nil {
			o.SDKMcpServers = make(map[string]*McpServer)
		}
		o.SDKMcpServers[name] = server
	}
}

// WithVerbose enables debug logging from the CLI.
func WithVerbose(verbose bool) Option {
	return func(o *Options) { o.Verbose = verbose }
}

// PermissionMode controls how tool execution permissions are handled.
type PermissionMode string

const (
	// PermissionModeDefault uses standard permission checks.
	PermissionModeDefault PermissionMode = "default"

	// PermissionModePlan is planning mode (no tool execution).
	PermissionModePlan PermissionMode = "plan"

	// PermissionModeAcceptEdits auto-approves file operations.
	PermissionModeAcceptEdits PermissionMode = "acceptEdits"

	// PermissionModeBypassAll skips all permission checks.
	PermissionModeBypassAll PermissionMode = "bypassPermissions"
)

// CanUseToolFunc is a callback invoked before tool execution.
//
// Return PermissionAllow{} to proceed or PermissionDeny{Reason: "..."} to
// block.
type CanUseToolFunc func(ctx context.Context, req ToolPermissionRequest) PermissionResult

// ToolPermissionRequest contains details about a tool execution request.
type ToolPermissionRequest struct {
	ToolName  string          // e.g. "mcp__calculator__add"
	Arguments json.RawMessage // Tool arguments as JSON
	Context   PermissionContext
}

// PermissionContext provides additional context for permission decisions.
type PermissionContext struct {
	SessionID string
	ToolUseID string
	AgentID   string
	Metadata  map[string]interface{}
}

// PermissionResult is the outcome of a permission check.
type PermissionResult interface {
	IsAllow() bool
}

// PermissionAllow indicates permission granted.
type PermissionAllow struct{}

// IsAllow implements PermissionResult.
func (PermissionAllow) IsAllow() bool { return true }

// PermissionDeny indicates permission denied.
type PermissionDeny struct {
	Reason string
}

// IsAllow implements PermissionResult.
func (PermissionDeny) IsAllow() bool { return false }

// HookType identifies a lifecycle event.
type HookType string

const (
	HookTypePreToolUse         HookType = "PreToolUse"
	HookTypePostToolUse        HookType = "PostToolUse"
	HookTypePostToolUseFailure HookType = "PostToolUseFailure"
	HookTypeNotification       HookType = "Notification"
	HookTypeUserPromptSubmit   HookType = "UserPromptSubmit"
	HookTypeSessionStart       HookType = "SessionStart"
	HookTypeSessionEnd         HookType = "SessionEnd"
	HookTypeStop               HookType = "Stop"
	HookTypeSubagentStart      HookType = "SubagentStart"
	HookTypeSubagentStop       HookType = "SubagentStop"
	HookTypePreCompact         HookType = "PreCompact"
	HookTypePermissionRequest  HookType = "PermissionRequest"
)

// HookConfig defines a lifecycle callback.
type HookConfig struct {
	Type     HookType
	Matcher  string // Regex pattern for tool names (e.g. ".*", "Bash")
	Timeout  int    // Seconds; 0 uses DefaultHookTimeoutSeconds.
	Callback HookCallback
}

// HookCallback is invoked when a hook event fires.
//
// The callback inspects the input and returns a HookOutput describing
// how the registry should proceed.
type HookCallback func(ctx context.Context, input HookInput) (HookOutput, error)

// HookInput is the base interface for hook inputs.
type HookInput interface {
	HookType() HookType
	Base() BaseHookInput
}

// BaseHookInput contains common fields for all hook inputs.
type BaseHookInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cwd            string `json:"cwd"`
	PermissionMode string `json:"permission_mode,omitempty"`
}

// PreToolUseInput contains data for PreToolUse hooks.
type PreToolUseInput struct {
	BaseHookInput
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

func (PreToolUseInput) HookType() HookType     { return HookTypePreToolUse }
func (i PreToolUseInput) Base() BaseHookInput { return i.BaseHookInput }

// PostToolUseInput contains data for PostToolUse hooks.
type PostToolUseInput struct {
	BaseHookInput
	ToolName     string          `json:"tool_name"`
	ToolInput    json.RawMessage `json:"tool_input"`
	ToolResponse json.RawMessage `json:"tool_response"`
}

func (PostToolUseInput) HookType() HookType    { return HookTypePostToolUse }
func (i PostToolUseInput) Base() BaseHookInput { return i.BaseHookInput }

// UserPromptSubmitInput contains data for UserPromptSubmit hooks.
type UserPromptSubmitInput struct {
	BaseHookInput
	Prompt string `json:"prompt"`
}

func (UserPromptSubmitInput) HookType() HookType    { return HookTypeUserPromptSubmit }
func (i UserPromptSubmitInput) Base() BaseHookInput { return i.BaseHookInput }

// StopInput contains data for Stop hooks.
type StopInput struct {
	BaseHookInput
}

func (StopInput) HookType() HookType     { return HookTypeStop }
func (i StopInput) Base() BaseHookInput { return i.BaseHookInput }

// SubagentStopInput contains data for SubagentStop hooks.
type SubagentStopInput struct {
	BaseHookInput
	AgentName string `json:"agent_name"`
	Status    string `json:"status"`
	Result    string `json:"result"`
}

func (SubagentStopInput) HookType() HookType    { return HookTypeSubagentStop }
func (i SubagentStopInput) Base() BaseHookInput { return i.BaseHookInput }

// PreCompactInput contains data for PreCompact hooks.
type PreCompactInput struct {
	BaseHookInput
	Trigger            string  `json:"trigger"` // "manual" or "auto"
	CustomInstructions *string `json:"custom_instructions,omitempty"`
	MessageCount       int     `json:"message_count"`
}

func (PreCompactInput) HookType() HookType    { return HookTypePreCompact }
func (i PreCompactInput) Base() BaseHookInput { return i.BaseHookInput }

// PostToolUseFailureInput contains data for PostToolUseFailure hooks.
type PostToolUseFailureInput struct {
	BaseHookInput
	ToolName    string          `json:"tool_name"`
	ToolInput   json.RawMessage `json:"tool_input"`
	Error       string          `json:"error"`
	IsInterrupt bool            `json:"is_interrupt,omitempty"`
}

func (PostToolUseFailureInput) HookType() HookType    { return HookTypePostToolUseFailure }
func (i PostToolUseFailureInput) Base() BaseHookInput { return i.BaseHookInput }

// NotificationInput contains data for Notification hooks.
type NotificationInput struct {
	BaseHookInput
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
}

func (NotificationInput) HookType() HookType    { return HookTypeNotification }
func (i NotificationInput) Base() BaseHookInput { return i.BaseHookInput }

// SessionStartInput contains data for SessionStart hooks.
type SessionStartInput struct {
	BaseHookInput
	Source string `json:"source"` // "startup", "resume", "clear", or "compact"
}

func (SessionStartInput) HookType() HookType    { return HookTypeSessionStart }
func (i SessionStartInput) Base() BaseHookInput { return i.BaseHookInput }

// SessionEndInput contains data for SessionEnd hooks.
type SessionEndInput struct {
	BaseHookInput
	Reason string `json:"reason"`
}

func (SessionEndInput) HookType() HookType    { return HookTypeSessionEnd }
func (i SessionEndInput) Base() BaseHookInput { return i.BaseHookInput }

// SubagentStartInput contains data for SubagentStart hooks.
type SubagentStartInput struct {
	BaseHookInput
	AgentID   string `json:"agent_id"`
	AgentType string `json:"agent_type"`
}

func (SubagentStartInput) HookType() HookType    { return HookTypeSubagentStart }
func (i SubagentStartInput) Base() BaseHookInput { return i.BaseHookInput }

// PermissionRequestInput contains data for PermissionRequest hooks.
type PermissionRequestInput struct {
	BaseHookInput
	ToolName              string             `json:"tool_name"`
	ToolInput             json.RawMessage    `json:"tool_input"`
	PermissionSuggestions []PermissionUpdate `json:"permission_suggestions,omitempty"`
}

func (PermissionRequestInput) HookType() HookType    { return HookTypePermissionRequest }
func (i PermissionRequestInput) Base() BaseHookInput { return i.BaseHookInput }

// HookOutput is what a hook callback returns to the Hook Registry to
// control how the event proceeds. Continue has no implicit default: it is
// a plain bool, so a HookOutput that leaves it unset carries false and is
// sent as continue:false unless Decision is set. ContinueOutput and the
// HookContinue/HookAllow/HookDeny/HookAsk constructors set it to true;
// HookStop leaves it false.
//
// Decision, when set, takes precedence over Continue for Stop/SubagentStop
// events: buildHookResponse omits "continue" entirely from the wire
// response when Decision is set, since sending continue:false alongside a
// block decision makes the CLI short-circuit the session before it honors
// the block. The json tag on Continue is informational only — the wire
// encoding always goes through buildHookResponse, which sends Continue
// explicitly (including false) rather than relying on the struct tag,
// since omitempty can't distinguish an explicit false from the unset
// default.
type HookOutput struct {
	Continue           bool                   `json:"continue,omitempty"`
	SuppressOutput     bool                   `json:"suppressOutput,omitempty"`
	StopReason         string                 `json:"stopReason,omitempty"`
	Decision           string                 `json:"decision,omitempty"` // "approve" or "block"
	SystemMessage      string                 `json:"systemMessage,omitempty"`
	Reason             string                 `json:"reason,omitempty"`
	AdditionalContext  string                 `json:"additionalContext,omitempty"`
	UpdatedInput       map[string]interface{} `json:"updatedInput,omitempty"`
	HookSpecificOutput map[string]interface{} `json:"hookSpecificOutput,omitempty"`
}

// ContinueOutput returns a HookOutput that lets the event proceed
// unmodified.
func ContinueOutput() HookOutput {
	return HookOutput{Continue: true}
}

// BlockOutput returns a HookOutput that blocks the event with a reason.
func BlockOutput(reason string) HookOutput {
	return HookOutput{Decision: "block", Reason: reason}
}

// PermissionUpdate represents an operation for updating permissions.
type PermissionUpdate struct {
	Type        string // "addRules", "replaceRules", "removeRules", "setMode", "addDirectories", "removeDirectories"
	Rules       []PermissionRule
	Behavior    PermissionBehavior
	Destination string // "userSettings", "projectSettings", "localSettings", "session"
	Mode        PermissionMode
	Directories []string
}

// PermissionRule represents a permission rule value.
type PermissionRule struct {
	ToolName    string
	RuleContent string
}

// PermissionBehavior controls permission behavior for rules.
type PermissionBehavior string

const (
	PermissionBehaviorAllow PermissionBehavior = "allow"
	PermissionBehaviorDeny  PermissionBehavior = "deny"
	PermissionBehaviorAsk   PermissionBehavior = "ask"
)

// AgentDefinition defines a specialized subagent.
type AgentDefinition struct {
	Name        string
	Description string // When to invoke this agent
	Prompt      string
	Tools       []string // nil = inherit all
	Model       string   // optional override
}

// SessionOptions configures session behavior.
type SessionOptions struct {
	SessionID       string // explicit session ID (empty = auto-generate)
	Resume          string // session ID to resume
	ForkFrom        string // session ID to fork from
	ForkSession     bool   // fork to a new session ID when resuming
	ResumeSessionAt string // resume at a specific message UUID
}

// MCPServerConfig configures an out-of-process MCP server.
type MCPServerConfig struct {
	Type    string // "stdio" or "socket"
	Command string
	Args    []string
	Env     map[string]string
	Address string // for socket type
}

// WithSystemPromptPreset sets a preset system prompt configuration.
func WithSystemPromptPreset(preset string, append string) Option {
	return func(o *Options) {
		o.SystemPromptPreset = &SystemPromptConfig{
			Type:   "preset",
			Preset: preset,
			Append: append,
		}
	}
}

// WithFallbackModel sets the model to use if the primary model fails.
func WithFallbackModel(model string) Option {
	return func(o *Options) { o.FallbackModel = model }
}

// WithCwd sets the current working directory for the agent.
func WithCwd(cwd string) Option {
	return func(o *Options) { o.Cwd = cwd }
}

// WithAdditionalDirectories sets additional directories the agent can
// access.
func WithAdditionalDirectories(dirs []string) Option {
	return func(o *Options) { o.AdditionalDirectories = dirs }
}

// WithAllowDangerouslySkipPermissions enables bypassing permissions.
// Required when using PermissionModeBypassAll.
func WithAllowDangerouslySkipPermissions(allow bool) Option {
	return func(o *Options) { o.AllowDangerouslySkipPermissions = allow }
}

// WithSettingSources controls which filesystem settings to load.
func WithSettingSources(sources []SettingSource) Option {
	return func(o *Options) { o.SettingSources = sources }
}

// WithSandbox configures sandbox behavior programmatically.
func WithSandbox(sandbox *SandboxSettings) Option {
	return func(o *Options) { o.Sandbox = sandbox }
}

// WithBetas enables beta features.
func WithBetas(betas []string) Option {
	return func(o *Options) { o.Betas = betas }
}

// WithPlugins loads custom plugins from local paths.
func WithPlugins(plugins []PluginConfig) Option {
	return func(o *Options) { o.Plugins = plugins }
}

// WithOutputFormat defines structured output format for agent results.
func WithOutputFormat(format *OutputFormat) Option {
	return func(o *Options) { o.OutputFormat = format }
}

// WithAllowedTools sets the list of allowed tool names.
func WithAllowedTools(tools []string) Option {
	return func(o *Options) { o.AllowedTools = tools }
}

// WithDisallowedTools sets the list of disallowed tool names.
func WithDisallowedTools(tools []string) Option {
	return func(o *Options) { o.DisallowedTools = tools }
}

// WithTools configures available tools using a preset or explicit list.
func WithTools(config *ToolsConfig) Option {
	return func(o *Options) { o.Tools = config }
}

// WithMaxBudgetUsd sets the maximum budget in USD for the query.
func WithMaxBudgetUsd(budget float64) Option {
	return func(o *Options) { o.MaxBudgetUsd = &budget }
}

// WithMaxThinkingTokens sets the maximum tokens for the thinking process.
func WithMaxThinkingTokens(tokens int) Option {
	return func(o *Options) { o.MaxThinkingTokens = &tokens }
}

// WithMaxTurns sets the maximum conversation turns.
func WithMaxTurns(turns int) Option {
	return func(o *Options) { o.MaxTurns = &turns }
}

// WithEnableFileCheckpointing enables file change tracking for rewinding.
func WithEnableFileCheckpointing(enable bool) Option {
	return func(o *Options) { o.EnableFileCheckpointing = enable }
}

// WithIncludePartialMessages includes partial message events in the
// stream.
func WithIncludePartialMessages(include bool) Option {
	return func(o *Options) { o.IncludePartialMessages = include }
}

// WithContinue continues the most recent conversation.
func WithContinue(cont bool) Option {
	return func(o *Options) { o.Continue = cont }
}

// WithStderr sets a callback for stderr output from the CLI.
func WithStderr(callback func(data string)) Option {
	return func(o *Options) { o.Stderr = callback }
}

// WithNoSessionPersistence disables session persistence. Sessions are not
// saved to disk and cannot be resumed. Useful for testing to avoid
// polluting session history.
func WithNoSessionPersistence() Option {
	return func(o *Options) { o.NoSessionPersistence = true }
}

// WithConfigDir sets a custom config directory for full isolation, useful
// for sandboxing tests away from user settings, hooks, and sessions.
func WithConfigDir(dir string) Option {
	return func(o *Options) { o.ConfigDir = dir }
}

// WithStrictMCPConfig only uses MCP servers from MCPServers config. When
// enabled, MCP configurations from settings files are ignored.
func WithStrictMCPConfig(strict bool) Option {
	return func(o *Options) { o.StrictMCPConfig = strict }
}
