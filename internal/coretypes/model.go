// Package coretypes holds the small value types shared across the config
// store, hook engine, and task-set scheduler: model targets, roles, and
// configuration scopes.
package coretypes

import "strings"

// ModelTarget identifies a concrete model endpoint. Name is non-empty when
// used as a default target; an empty Name signals "absent" per spec.
type ModelTarget struct {
	Name         string            `yaml:"name" json:"name"`
	BaseURL      string            `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKeyEnv    string            `yaml:"api_key_env,omitempty" json:"api_key_env,omitempty"`
	APITokenEnv  string            `yaml:"api_token_env,omitempty" json:"api_token_env,omitempty"`
	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty" json:"extra_headers,omitempty"`
}

// IsAbsent reports whether this target carries no usable model name.
func (t ModelTarget) IsAbsent() bool {
	return strings.TrimSpace(t.Name) == ""
}

// ModelRole names a purpose for which a ModelTarget is resolved.
type ModelRole string

const (
	RoleChat        ModelRole = "chat"
	RoleTitle       ModelRole = "title"
	RoleSessionName ModelRole = "session_name"
	RoleCompact     ModelRole = "compact"
	RoleMetaPrompt  ModelRole = "meta_prompt"
	RoleTaskStatus  ModelRole = "task_status"
)

// Key returns the string key this role is stored under in role-override maps.
func (r ModelRole) Key() string {
	return string(r)
}

// Scope is one of the four configuration layers. Merge precedence is
// strict: System < User < Workspace < Runtime.
type Scope int

const (
	ScopeSystem Scope = iota
	ScopeUser
	ScopeWorkspace
	ScopeRuntime
)

// String returns the lower-case scope name, used for filenames and logs.
func (s Scope) String() string {
	switch s {
	case ScopeSystem:
		return "system"
	case ScopeUser:
		return "user"
	case ScopeWorkspace:
		return "workspace"
	case ScopeRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Persistent reports whether the scope maps to a filesystem location.
// Runtime is ephemeral and never persisted.
func (s Scope) Persistent() bool {
	return s != ScopeRuntime
}

// OrderedPersistentScopes lists the persistent scopes in merge order
// (lowest precedence first).
var OrderedPersistentScopes = []Scope{ScopeSystem, ScopeUser, ScopeWorkspace}

// ResolveEnv looks up a ModelTarget's credential from the environment.
// Absence of the named variable yields ("", false), not an error.
func ResolveEnv(getenv func(string) (string, bool), target ModelTarget) (key string, ok bool) {
	if getenv == nil {
		return "", false
	}
	if target.APIKeyEnv != "" {
		if v, present := getenv(target.APIKeyEnv); present {
			return v, true
		}
	}
	if target.APITokenEnv != "" {
		if v, present := getenv(target.APITokenEnv); present {
			return v, true
		}
	}
	return "", false
}
