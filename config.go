package agentcli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultsFile is the YAML shape of a local-development or CI defaults
// overlay: a subset of Options a team wants to pin outside of Go source,
// e.g. in a checked-in `agentcli.defaults.yaml` fixture.
//
// Only the fields most commonly pinned this way are exposed; anything
// more specific belongs in code as an Option.
type DefaultsFile struct {
	CLIPath         string            `yaml:"cli_path"`
	Model           string            `yaml:"model"`
	FallbackModel   string            `yaml:"fallback_model"`
	Cwd             string            `yaml:"cwd"`
	PermissionMode  string            `yaml:"permission_mode"`
	Env             map[string]string `yaml:"env"`
	SettingSources  []string          `yaml:"setting_sources"`
	Verbose         bool              `yaml:"verbose"`
	ConfigDir       string            `yaml:"config_dir"`
	StrictMCPConfig bool              `yaml:"strict_mcp_config"`
	MaxTurns        *int              `yaml:"max_turns"`
}

// LoadDefaultsFile reads and parses a YAML defaults file from path.
func LoadDefaultsFile(path string) (*DefaultsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agentcli: read defaults file: %w", err)
	}

	var df DefaultsFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("agentcli: parse defaults file %s: %w", path, err)
	}
	return &df, nil
}

// Options converts the file's fields into a slice of Option, to be
// applied before any caller-supplied options so explicit options always
// win over file-sourced defaults.
func (df *DefaultsFile) Options() []Option {
	if df == nil {
		return nil
	}

	var opts []Option
	if df.CLIPath != "" {
		opts = append(opts, WithCLIPath(df.CLIPath))
	}
	if df.Model != "" {
		opts = append(opts, WithModel(df.Model))
	}
	if df.FallbackModel != "" {
		opts = append(opts, WithFallbackModel(df.FallbackModel))
	}
	if df.Cwd != "" {
		opts = append(opts, WithCwd(df.Cwd))
	}
	if df.PermissionMode != "" {
		opts = append(opts, WithPermissionMode(PermissionMode(df.PermissionMode)))
	}
	if len(df.Env) > 0 {
		opts = append(opts, WithEnv(df.Env))
	}
	if len(df.SettingSources) > 0 {
		sources := make([]SettingSource, len(df.SettingSources))
		for i, s := range df.SettingSources {
			sources[i] = SettingSource(s)
		}
		opts = append(opts, WithSettingSources(sources))
	}
	if df.Verbose {
		opts = append(opts, WithVerbose(true))
	}
	if df.ConfigDir != "" {
		opts = append(opts, WithConfigDir(df.ConfigDir))
	}
	if df.StrictMCPConfig {
		opts = append(opts, WithStrictMCPConfig(true))
	}
	if df.MaxTurns != nil {
		opts = append(opts, WithMaxTurns(*df.MaxTurns))
	}
	return opts
}

// LoadOptions loads a defaults file (if path is non-empty and the file
// exists) and appends extra, so that extra always overrides whatever
// the file set. A missing path is not an error: callers typically pass
// an optional, environment-resolved location.
func LoadOptions(path string, extra ...Option) ([]Option, error) {
	if path == "" {
		return extra, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return extra, nil
	}

	df, err := LoadDefaultsFile(path)
	if err != nil {
		return nil, err
	}

	opts := df.Options()
	opts = append(opts, extra...)
	return opts, nil
}
