package config

import "github.com/codexcore/runtime/internal/coretypes"

// Config is an immutable, fully-resolved configuration snapshot. Instances
// are never mutated after construction; a reload produces a new Config that
// supersedes the old one.
type Config struct {
	Models  ModelsConfig
	Sandbox SandboxConfig
	Shell   ShellConfig
	MCP     MCPConfig
	UI      UIConfig
	History HistoryConfig
	Todo    TodoConfig
	Compact CompactConfig
	Session SessionConfig
	Hooks   HooksConfig
	Slash   SlashConfig
}

// ModelsConfig aggregates the default model target, per-role overrides, and
// named profiles available to Chat steps.
type ModelsConfig struct {
	Default   coretypes.ModelTarget
	Overrides map[string]coretypes.ModelTarget // keyed by ModelRole.Key()
	Profiles  map[string]coretypes.ModelTarget // keyed by profile name
}

// PickModel resolves role to a ModelTarget: overrides[role] if present,
// else Models.Default.
func (c Config) PickModel(role coretypes.ModelRole) coretypes.ModelTarget {
	if c.Models.Overrides != nil {
		if t, ok := c.Models.Overrides[role.Key()]; ok {
			return t
		}
	}
	return c.Models.Default
}

// Profile looks up a named model profile.
func (c Config) Profile(name string) (coretypes.ModelTarget, bool) {
	if name == "" || c.Models.Profiles == nil {
		return coretypes.ModelTarget{}, false
	}
	t, ok := c.Models.Profiles[name]
	return t, ok
}

// SandboxConfig controls the execution sandbox applied to Exec/Git steps.
type SandboxConfig struct {
	Mode           string
	NetworkAllowed bool
	WritableRoots  []string
}

// ShellApproval enumerates the shell command approval policies.
type ShellApproval string

const (
	ApprovalOnRequest    ShellApproval = "on_request"
	ApprovalOnFailure    ShellApproval = "on_failure"
	ApprovalUnlessTrusted ShellApproval = "unless_trusted"
	ApprovalNever        ShellApproval = "never"
)

// ShellConfig governs shell command execution policy.
type ShellConfig struct {
	Approval          ShellApproval
	AllowList         []string
	DenyList          []string
	EnvInherit        bool
	ExclusionPatterns []string
}

// MCPServerConfig describes one named MCP server's transport parameters.
type MCPServerConfig struct {
	Transport string // "stdio" | "tcp"
	Command   string
	Args      []string
	Address   string
}

// MCPConfig is the map of named MCP servers.
type MCPConfig struct {
	Servers map[string]MCPServerConfig
}

// UIConfig holds opaque UI feature flags.
type UIConfig struct {
	Flags map[string]bool
}

// HistoryConfig controls conversation-history persistence.
type HistoryConfig struct {
	Mode string // persistence mode, e.g. "full" | "summary" | "off"
}

// TodoConfig locates the to-do store file.
type TodoConfig struct {
	Path             string
	FilesDirEnabled  bool
}

// CompactConfig holds the Compactor's thresholds and defaults.
type CompactConfig struct {
	AutoEnable          bool
	AutoOnTaskEnd       bool
	AutoMinIntervalSecs int
	MaxFiles            int
	IncludeGlobs        []string
}

// SessionConfig controls the Session Log's directory layout and retention.
type SessionConfig struct {
	Dir       string
	ArrayForm bool
	LineForm  bool
	KeepDays  int
}

// HooksConfig controls the Hook Engine's recursion limit and rule sources.
type HooksConfig struct {
	RecursionLimit int
	RuleDirs       []string
}

// SlashConfig locates additional slash-command directories.
type SlashConfig struct {
	CommandDirs []string
}

// Default returns the built-in baseline Config, the floor every layer
// merges on top of.
func Default() Config {
	return Config{
		Shell: ShellConfig{
			Approval:   ApprovalOnRequest,
			EnvInherit: true,
		},
		Compact: CompactConfig{
			MaxFiles: 20,
		},
		Session: SessionConfig{
			Dir:       "",
			LineForm:  true,
			KeepDays:  30,
		},
		Hooks: HooksConfig{
			RecursionLimit: 3,
		},
		Todo: TodoConfig{
			Path: ".codex/todo.json",
		},
	}
}
