// Package taskset implements the Task-Set Scheduler: it drives a
// TaskSetPlan to completion, emitting a linear UI event stream, honoring
// hook vetoes, and interposing an inter-set summarization/confirmation
// handshake between sets.
package taskset

import "time"

// StepKind discriminates the five TaskStep variants.
type StepKind string

const (
	StepChat     StepKind = "chat"
	StepExec     StepKind = "exec"
	StepMcpCall  StepKind = "mcp_call"
	StepGit      StepKind = "git"
	StepSubAgent StepKind = "sub_agent"
)

// TaskStep is a tagged-union step within a TaskSpec. Only the fields for
// Kind are meaningful; the rest are left zero.
type TaskStep struct {
	Kind StepKind `yaml:"kind" json:"kind"`

	// Chat
	Prompt       string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	ModelProfile string `yaml:"model_profile,omitempty" json:"model_profile,omitempty"`

	// Exec / Git
	Cmd  string   `yaml:"cmd,omitempty" json:"cmd,omitempty"`
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`

	// Git
	GitAction string `yaml:"action,omitempty" json:"action,omitempty"`

	// McpCall
	Server  string `yaml:"server,omitempty" json:"server,omitempty"`
	Method  string `yaml:"method,omitempty" json:"method,omitempty"`
	Payload any    `yaml:"payload,omitempty" json:"payload,omitempty"`

	// SubAgent
	Agent string     `yaml:"agent,omitempty" json:"agent,omitempty"`
	Steps []TaskStep `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// TaskSpec is one task within a set. ID is unique within its enclosing
// TaskSetSpec.
type TaskSpec struct {
	ID           string     `yaml:"id" json:"id"`
	Name         string     `yaml:"name" json:"name"`
	ModelProfile string     `yaml:"model_profile,omitempty" json:"model_profile,omitempty"`
	Steps        []TaskStep `yaml:"steps" json:"steps"`
}

// SetMode selects how a TaskSetSpec's tasks are scheduled relative to one
// another.
type SetMode string

const (
	ModeSequential SetMode = "sequential"
	ModeParallel   SetMode = "parallel"
)

// TaskSetSpec is one set of tasks within a plan. SetID is unique within
// its enclosing TaskSetPlan.
type TaskSetSpec struct {
	SetID string     `yaml:"set_id" json:"set_id"`
	Title string     `yaml:"title" json:"title"`
	Mode  SetMode    `yaml:"mode" json:"mode"`
	Tasks []TaskSpec `yaml:"tasks" json:"tasks"`
}

// TaskSetPlan is the declarative unit of work driven to completion by
// Run. Sets execute in list order; within a set, order matters only in
// ModeSequential.
type TaskSetPlan struct {
	SessionID string        `yaml:"session_id" json:"session_id"`
	Sets      []TaskSetSpec `yaml:"sets" json:"sets"`
}

// TaskOutcome summarizes a completed task for its TaskEnd event.
type TaskOutcome struct {
	OK       bool
	Error    string
	Duration time.Duration
}
