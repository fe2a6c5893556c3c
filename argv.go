package agentcli

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// BuildArgv constructs the Agent CLI argument vector for the given
// Options. The returned slice never contains a shell invocation of any
// kind — every user-supplied value occupies exactly one discrete
// element, placed immediately after its flag, unchanged. Callers pass
// this slice directly to exec.Command(path, argv...); it must never be
// joined into a single string and handed to "sh -c".
//
// The skeleton is fixed: print mode, stream-json in both directions,
// verbose (stream-json requires verbose), followed by every configured
// option as a discrete flag/value pair.
func BuildArgv(opts *Options) []string {
	args := []string{
		"-p",
		"--output-format", "stream-json",
		"--input-format", "stream-json",
		"--verbose",
	}

	if opts == nil {
		return args
	}

	if opts.SystemPrompt != "" {
		args = append(args, "--system-prompt", opts.SystemPrompt)
	}
	if opts.SystemPromptPreset != nil {
		if opts.SystemPromptPreset.Preset != "" {
			args = append(args, "--system-prompt-preset", opts.SystemPromptPreset.Preset)
		}
		if opts.SystemPromptPreset.Append != "" {
			args = append(args, "--append-system-prompt", opts.SystemPromptPreset.Append)
		}
	}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.FallbackModel != "" {
		args = append(args, "--fallback-model", opts.FallbackModel)
	}
	if opts.PermissionMode != "" {
		args = append(args, "--permission-mode", string(opts.PermissionMode))
	}
	if opts.AllowDangerouslySkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	if opts.CanUseTool != nil {
		args = append(args, "--permission-prompt-tool", "stdio")
	}
	if opts.Cwd != "" {
		args = append(args, "--cwd", opts.Cwd)
	}
	for _, dir := range opts.AdditionalDirectories {
		args = append(args, "--add-dir", dir)
	}
	if len(opts.AllowedTools) > 0 {
		args = append(args, "--allowed-tools", strings.Join(opts.AllowedTools, ","))
	}
	if len(opts.DisallowedTools) > 0 {
		args = append(args, "--disallowed-tools", strings.Join(opts.DisallowedTools, ","))
	}
	if len(opts.SettingSources) > 0 {
		names := make([]string, len(opts.SettingSources))
		for i, s := range opts.SettingSources {
			names[i] = string(s)
		}
		args = append(args, "--setting-sources", strings.Join(names, ","))
	}
	if len(opts.Betas) > 0 {
		args = append(args, "--betas", strings.Join(opts.Betas, ","))
	}
	for _, plugin := range opts.Plugins {
		if plugin.Path != "" {
			args = append(args, "--plugin", plugin.Path)
		}
	}
	if opts.OutputFormat != nil && opts.OutputFormat.Schema != nil {
		if data, err := json.Marshal(opts.OutputFormat.Schema); err == nil {
			args = append(args, "--output-schema", string(data))
		}
	}
	if opts.MaxBudgetUsd != nil {
		args = append(args, "--max-budget-usd", strconv.FormatFloat(*opts.MaxBudgetUsd, 'f', -1, 64))
	}
	if opts.MaxThinkingTokens != nil {
		args = append(args, "--max-thinking-tokens", strconv.Itoa(*opts.MaxThinkingTokens))
	}
	if opts.MaxTurns != nil {
		args = append(args, "--max-turns", strconv.Itoa(*opts.MaxTurns))
	}
	if opts.EnableFileCheckpointing {
		args = append(args, "--enable-file-checkpointing")
	}
	if opts.IncludePartialMessages {
		args = append(args, "--include-partial-messages")
	}
	if opts.Continue {
		args = append(args, "--continue")
	}
	if opts.NoSessionPersistence {
		args = append(args, "--no-session-persistence")
	}
	if opts.ConfigDir != "" {
		args = append(args, "--config-dir", opts.ConfigDir)
	}
	if opts.StrictMCPConfig {
		args = append(args, "--strict-mcp-config")
	}

	// Session resume/fork: every value here is user data and goes
	// through the same discrete-element discipline as model/prompt.
	if opts.SessionOptions.SessionID != "" {
		args = append(args, "--session-id", opts.SessionOptions.SessionID)
	}
	if opts.SessionOptions.Resume != "" {
		args = append(args, "--resume", opts.SessionOptions.Resume)
	}
	if opts.SessionOptions.ForkFrom != "" {
		args = append(args, "--fork-from", opts.SessionOptions.ForkFrom)
	}
	if opts.SessionOptions.ForkSession {
		args = append(args, "--fork-session")
	}
	if opts.SessionOptions.ResumeSessionAt != "" {
		args = append(args, "--resume-session-at", opts.SessionOptions.ResumeSessionAt)
	}

	// External, stdio-based MCP servers: each server's config is
	// serialized to its own discrete --mcp-config JSON argv element,
	// never string-concatenated with anything else on the line.
	if len(opts.MCPServers) > 0 {
		names := make([]string, 0, len(opts.MCPServers))
		for name := range opts.MCPServers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cfg := opts.MCPServers[name]
			entry := map[string]interface{}{}
			if cfg.Command != "" {
				entry["command"] = cfg.Command
			}
			if len(cfg.Args) > 0 {
				entry["args"] = cfg.Args
			}
			if len(cfg.Env) > 0 {
				entry["env"] = cfg.Env
			}
			if cfg.Address != "" {
				entry["address"] = cfg.Address
			}
			if cfg.Type != "" {
				entry["type"] = cfg.Type
			}
			wrapper := map[string]interface{}{
				"mcpServers": map[string]interface{}{name: entry},
			}
			if data, err := json.Marshal(wrapper); err == nil {
				args = append(args, "--mcp-config", string(data))
			}
		}
	}

	// In-process SDK tool servers are announced by name only; their
	// tool schemas travel over the control channel at initialize time,
	// not on argv.
	if len(opts.SDKMcpServers) > 0 {
		names := make([]string, 0, len(opts.SDKMcpServers))
		for name := range opts.SDKMcpServers {
			names = append(names, name)
		}
		sort.Strings(names)
		args = append(args, "--sdk-mcp-servers", strings.Join(names, ","))
	}

	return args
}
