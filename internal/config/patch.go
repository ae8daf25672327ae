package config

import "github.com/codexcore/runtime/internal/coretypes"

// Patch is what a single layer file (or the runtime overlay) contributes.
// Scalar fields are pointers so "absent" and "explicitly zero" are
// distinguishable from an explicit zero value.
// Vector and map fields use their natural nil-vs-populated zero value.
type Patch struct {
	Models  *ModelsPatch  `yaml:"models,omitempty"`
	Sandbox *SandboxPatch `yaml:"sandbox,omitempty"`
	Shell   *ShellPatch   `yaml:"shell,omitempty"`
	MCP     *MCPPatch     `yaml:"mcp,omitempty"`
	UI      *UIPatch      `yaml:"ui,omitempty"`
	History *HistoryPatch `yaml:"history,omitempty"`
	Todo    *TodoPatch    `yaml:"todo,omitempty"`
	Compact *CompactPatch `yaml:"compact,omitempty"`
	Session *SessionPatch `yaml:"session,omitempty"`
	Hooks   *HooksPatch   `yaml:"hooks,omitempty"`
	Slash   *SlashPatch   `yaml:"slash,omitempty"`
}

// ModelsPatch is the file-layer form of ModelsConfig.
type ModelsPatch struct {
	Default   *coretypes.ModelTarget          `yaml:"default,omitempty"`
	Overrides map[string]coretypes.ModelTarget `yaml:"overrides,omitempty"`
	Profiles  map[string]coretypes.ModelTarget `yaml:"profiles,omitempty"`
}

// SandboxPatch is the file-layer form of SandboxConfig.
type SandboxPatch struct {
	Mode           *string  `yaml:"mode,omitempty"`
	NetworkAllowed *bool    `yaml:"network_allowed,omitempty"`
	WritableRoots  []string `yaml:"writable_roots,omitempty"`
}

// ShellPatch is the file-layer form of ShellConfig.
type ShellPatch struct {
	Approval          *string  `yaml:"approval,omitempty"`
	AllowList         []string `yaml:"allow_list,omitempty"`
	DenyList          []string `yaml:"deny_list,omitempty"`
	EnvInherit        *bool    `yaml:"env_inherit,omitempty"`
	ExclusionPatterns []string `yaml:"exclusion_patterns,omitempty"`
}

// MCPPatch is the file-layer form of MCPConfig.
type MCPPatch struct {
	Servers map[string]MCPServerConfig `yaml:"servers,omitempty"`
}

// UIPatch is the file-layer form of UIConfig.
type UIPatch struct {
	Flags map[string]bool `yaml:"flags,omitempty"`
}

// HistoryPatch is the file-layer form of HistoryConfig.
type HistoryPatch struct {
	Mode *string `yaml:"mode,omitempty"`
}

// TodoPatch is the file-layer form of TodoConfig.
type TodoPatch struct {
	Path            *string `yaml:"path,omitempty"`
	FilesDirEnabled *bool   `yaml:"files_dir_enabled,omitempty"`
}

// CompactPatch is the file-layer form of CompactConfig.
type CompactPatch struct {
	AutoEnable          *bool    `yaml:"auto_enable,omitempty"`
	AutoOnTaskEnd       *bool    `yaml:"auto_on_task_end,omitempty"`
	AutoMinIntervalSecs *int     `yaml:"auto_min_interval_secs,omitempty"`
	MaxFiles            *int     `yaml:"max_files,omitempty"`
	IncludeGlobs        []string `yaml:"include_globs,omitempty"`
}

// SessionPatch is the file-layer form of SessionConfig.
type SessionPatch struct {
	Dir       *string `yaml:"dir,omitempty"`
	ArrayForm *bool   `yaml:"array_form,omitempty"`
	LineForm  *bool   `yaml:"line_form,omitempty"`
	KeepDays  *int    `yaml:"keep_days,omitempty"`
}

// HooksPatch is the file-layer form of HooksConfig.
type HooksPatch struct {
	RecursionLimit *int     `yaml:"recursion_limit,omitempty"`
	RuleDirs       []string `yaml:"rule_dirs,omitempty"`
}

// SlashPatch is the file-layer form of SlashConfig.
type SlashPatch struct {
	CommandDirs []string `yaml:"command_dirs,omitempty"`
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
func intp(i int) *int       { return &i }

// AsPatch converts a resolved Config back into a Patch carrying every field
// explicitly. Used by Store.ApplyRuntimePatch to hold the runtime overlay
// and by the idempotency test for Merge (merging a Config's own patch into
// itself must be a no-op).
func (c Config) AsPatch() Patch {
	return Patch{
		Models: &ModelsPatch{
			Default:   &c.Models.Default,
			Overrides: c.Models.Overrides,
			Profiles:  c.Models.Profiles,
		},
		Sandbox: &SandboxPatch{
			Mode:           strp(c.Sandbox.Mode),
			NetworkAllowed: boolp(c.Sandbox.NetworkAllowed),
			WritableRoots:  c.Sandbox.WritableRoots,
		},
		Shell: &ShellPatch{
			Approval:          strp(string(c.Shell.Approval)),
			AllowList:         c.Shell.AllowList,
			DenyList:          c.Shell.DenyList,
			EnvInherit:        boolp(c.Shell.EnvInherit),
			ExclusionPatterns: c.Shell.ExclusionPatterns,
		},
		MCP: &MCPPatch{Servers: c.MCP.Servers},
		UI:  &UIPatch{Flags: c.UI.Flags},
		History: &HistoryPatch{
			Mode: strp(c.History.Mode),
		},
		Todo: &TodoPatch{
			Path:            strp(c.Todo.Path),
			FilesDirEnabled: boolp(c.Todo.FilesDirEnabled),
		},
		Compact: &CompactPatch{
			AutoEnable:          boolp(c.Compact.AutoEnable),
			AutoOnTaskEnd:       boolp(c.Compact.AutoOnTaskEnd),
			AutoMinIntervalSecs: intp(c.Compact.AutoMinIntervalSecs),
			MaxFiles:            intp(c.Compact.MaxFiles),
			IncludeGlobs:        c.Compact.IncludeGlobs,
		},
		Session: &SessionPatch{
			Dir:       strp(c.Session.Dir),
			ArrayForm: boolp(c.Session.ArrayForm),
			LineForm:  boolp(c.Session.LineForm),
			KeepDays:  intp(c.Session.KeepDays),
		},
		Hooks: &HooksPatch{
			RecursionLimit: intp(c.Hooks.RecursionLimit),
			RuleDirs:       c.Hooks.RuleDirs,
		},
		Slash: &SlashPatch{CommandDirs: c.Slash.CommandDirs},
	}
}
