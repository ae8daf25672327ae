// Package hooks implements the Hook Engine: a rule-matching,
// recursion-limited, reentrancy-safe event dispatcher whose actions may
// veto operations, invoke external processes, or synthesize model prompts.
package hooks

import "strings"

// EventKind is a tagged discriminant identifying a HookEvent's lifecycle
// point. String values are the lower-snake-case tags rules match
// against.
type EventKind string

const (
	EventPreToolUse  EventKind = "pre_tool_use"
	EventPostToolUse EventKind = "post_tool_use"
	EventPreExec     EventKind = "pre_exec"
	EventPostExec    EventKind = "post_exec"
	EventPreMCP      EventKind = "pre_mcp"
	EventPostMCP     EventKind = "post_mcp"
	EventTaskStart    EventKind = "task_start"
	EventTaskProgress EventKind = "task_progress"
	EventTaskEnd      EventKind = "task_end"
	EventGitPreCommit  EventKind = "git_pre_commit"
	EventGitPostCommit EventKind = "git_post_commit"
	EventGitPrePush    EventKind = "git_pre_push"
	EventGitPostPush   EventKind = "git_post_push"
)

// normalizeTag trims and lower-cases a rule's `when` entry before matching,
// at the same lifecycle point.
func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Event is a lifecycle notification carrying a Kind discriminant plus the
// payload appropriate to that lifecycle point. Unused fields for a given
// Kind are left zero.
type Event struct {
	Kind EventKind

	// cwd is the working directory Exec actions spawn children in.
	CWD string

	// Env carries accumulated ModifyEnv decisions from earlier events in
	// the same task; Exec actions merge it over the inherited environment.
	// Nil means no accumulated overlay yet.
	Env map[string]string

	// PreToolUse / PostToolUse
	Tool string

	// PreExec / PostExec / Git*
	Cmd    string
	Argv   []string
	Status int // exit code, PostExec only (Git steps also emit PostExec)

	// PreMCP / PostMCP
	Server  string
	Method  string
	Payload any

	// Task*
	TaskID      string
	SetID       string
	SessionID   string
	ProgressMsg string
}

// Tag returns the lower-snake-case event-type name used for rule matching.
func (e Event) Tag() string { return string(e.Kind) }

// Rule is an immutable, load-order-fixed hook rule.
type Rule struct {
	Name        string   `yaml:"name"`
	When        []string `yaml:"when"`
	Actions     []Action `yaml:"actions"`
	DenyOnFail  bool     `yaml:"deny_on_fail"`
	Enabled     bool     `yaml:"enabled"`
}

// Matches reports whether the rule's When list contains tag, compared
// case-insensitively with surrounding whitespace trimmed.
func (r Rule) Matches(tag string) bool {
	if !r.Enabled {
		return false
	}
	tag = normalizeTag(tag)
	for _, w := range r.When {
		if normalizeTag(w) == tag {
			return true
		}
	}
	return false
}

// ActionKind discriminates the three HookAction variants.
type ActionKind string

const (
	ActionExec   ActionKind = "exec"
	ActionPrompt ActionKind = "prompt"
	ActionPlugin ActionKind = "plugin"
)

// Action is a tagged-union HookAction: Exec, Prompt, or Plugin.
type Action struct {
	Kind ActionKind `yaml:"kind"`

	// Exec
	Cmd  string   `yaml:"cmd,omitempty"`
	Args []string `yaml:"args,omitempty"`

	// Prompt
	ModelProfile string `yaml:"model_profile,omitempty"`
	Instruction  string `yaml:"instruction,omitempty"`
	MaxTokens    int    `yaml:"max_tokens,omitempty"`

	// Plugin
	Handler string `yaml:"handler,omitempty"`
	Config  any    `yaml:"config,omitempty"`
}

// DecisionKind discriminates the three HookDecision variants.
type DecisionKind string

const (
	DecisionContinue  DecisionKind = "continue"
	DecisionDeny      DecisionKind = "deny"
	DecisionModifyEnv DecisionKind = "modify_env"
)

// Decision is the tagged-union HookDecision returned from Emit.
type Decision struct {
	Kind   DecisionKind
	Reason string            // Deny only
	Set    map[string]string // ModifyEnv only
	Remove []string          // ModifyEnv only
}

// Continue is the zero-value, no-op decision.
var Continue = Decision{Kind: DecisionContinue}

// Deny constructs a Deny decision carrying reason.
func Deny(reason string) Decision {
	return Decision{Kind: DecisionDeny, Reason: reason}
}

// IsDeny reports whether d is a Deny decision.
func (d Decision) IsDeny() bool { return d.Kind == DecisionDeny }
