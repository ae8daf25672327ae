package config

import "strings"

// Merge deep-merges patch into base and returns the resulting Config. base
// is never mutated. Field-class merge rules:
//
//   - scalar options: a present value in patch overrides base; absence
//     leaves base untouched.
//   - vector fields: a non-empty patch value replaces base wholesale.
//   - map fields: patch entries are inserted into base's map, replacing
//     same-keyed entries; base entries not present in patch are kept.
//   - "feature on" booleans: logical-or.
//   - 0-as-absent numeric thresholds: a non-zero patch value replaces base.
//   - shell.approval: unconditional replacement when present (last writer
//     wins, same as any other scalar option here).
func Merge(base Config, patch Patch) Config {
	out := base

	if patch.Models != nil {
		mergeModels(&out.Models, patch.Models)
	}
	if patch.Sandbox != nil {
		mergeSandbox(&out.Sandbox, patch.Sandbox)
	}
	if patch.Shell != nil {
		mergeShell(&out.Shell, patch.Shell)
	}
	if patch.MCP != nil {
		mergeMCP(&out.MCP, patch.MCP)
	}
	if patch.UI != nil {
		mergeUI(&out.UI, patch.UI)
	}
	if patch.History != nil {
		mergeHistory(&out.History, patch.History)
	}
	if patch.Todo != nil {
		mergeTodo(&out.Todo, patch.Todo)
	}
	if patch.Compact != nil {
		mergeCompact(&out.Compact, patch.Compact)
	}
	if patch.Session != nil {
		mergeSession(&out.Session, patch.Session)
	}
	if patch.Hooks != nil {
		mergeHooks(&out.Hooks, patch.Hooks)
	}
	if patch.Slash != nil {
		mergeSlash(&out.Slash, patch.Slash)
	}
	return out
}

// MergeAll applies patches in order (lowest precedence first) over base.
func MergeAll(base Config, patches ...Patch) Config {
	out := base
	for _, p := range patches {
		out = Merge(out, p)
	}
	return out
}

func mergeModels(dst *ModelsConfig, p *ModelsPatch) {
	if p.Default != nil {
		dst.Default = *p.Default
	}
	dst.Overrides = mergeMap(dst.Overrides, p.Overrides)
	dst.Profiles = mergeMap(dst.Profiles, p.Profiles)
}

func mergeSandbox(dst *SandboxConfig, p *SandboxPatch) {
	if p.Mode != nil {
		dst.Mode = *p.Mode
	}
	if p.NetworkAllowed != nil {
		dst.NetworkAllowed = dst.NetworkAllowed || *p.NetworkAllowed
	}
	if len(p.WritableRoots) > 0 {
		dst.WritableRoots = p.WritableRoots
	}
}

func mergeShell(dst *ShellConfig, p *ShellPatch) {
	if p.Approval != nil {
		dst.Approval = ShellApproval(strings.TrimSpace(*p.Approval))
	}
	if len(p.AllowList) > 0 {
		dst.AllowList = p.AllowList
	}
	if len(p.DenyList) > 0 {
		dst.DenyList = p.DenyList
	}
	if p.EnvInherit != nil {
		dst.EnvInherit = *p.EnvInherit
	}
	if len(p.ExclusionPatterns) > 0 {
		dst.ExclusionPatterns = p.ExclusionPatterns
	}
}

func mergeMCP(dst *MCPConfig, p *MCPPatch) {
	dst.Servers = mergeMap(dst.Servers, p.Servers)
}

func mergeUI(dst *UIConfig, p *UIPatch) {
	dst.Flags = mergeMap(dst.Flags, p.Flags)
}

func mergeHistory(dst *HistoryConfig, p *HistoryPatch) {
	if p.Mode != nil {
		dst.Mode = *p.Mode
	}
}

func mergeTodo(dst *TodoConfig, p *TodoPatch) {
	if p.Path != nil {
		dst.Path = *p.Path
	}
	if p.FilesDirEnabled != nil {
		dst.FilesDirEnabled = dst.FilesDirEnabled || *p.FilesDirEnabled
	}
}

func mergeCompact(dst *CompactConfig, p *CompactPatch) {
	if p.AutoEnable != nil {
		dst.AutoEnable = dst.AutoEnable || *p.AutoEnable
	}
	if p.AutoOnTaskEnd != nil {
		dst.AutoOnTaskEnd = dst.AutoOnTaskEnd || *p.AutoOnTaskEnd
	}
	if p.AutoMinIntervalSecs != nil && *p.AutoMinIntervalSecs != 0 {
		dst.AutoMinIntervalSecs = *p.AutoMinIntervalSecs
	}
	if p.MaxFiles != nil && *p.MaxFiles != 0 {
		dst.MaxFiles = *p.MaxFiles
	}
	if len(p.IncludeGlobs) > 0 {
		dst.IncludeGlobs = p.IncludeGlobs
	}
}

func mergeSession(dst *SessionConfig, p *SessionPatch) {
	if p.Dir != nil {
		dst.Dir = *p.Dir
	}
	if p.ArrayForm != nil {
		dst.ArrayForm = dst.ArrayForm || *p.ArrayForm
	}
	if p.LineForm != nil {
		dst.LineForm = dst.LineForm || *p.LineForm
	}
	if p.KeepDays != nil && *p.KeepDays != 0 {
		dst.KeepDays = *p.KeepDays
	}
}

func mergeHooks(dst *HooksConfig, p *HooksPatch) {
	if p.RecursionLimit != nil && *p.RecursionLimit != 0 {
		dst.RecursionLimit = *p.RecursionLimit
	}
	if len(p.RuleDirs) > 0 {
		dst.RuleDirs = p.RuleDirs
	}
}

func mergeSlash(dst *SlashConfig, p *SlashPatch) {
	if len(p.CommandDirs) > 0 {
		dst.CommandDirs = p.CommandDirs
	}
}

// mergeMap inserts every entry of patch into a copy of base, replacing
// same-keyed entries. A nil patch leaves base untouched.
func mergeMap[K comparable, V any](base map[K]V, patch map[K]V) map[K]V {
	if len(patch) == 0 {
		return base
	}
	out := make(map[K]V, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
