package main

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the codexcore CLI: a workspace-scoped driver for
// TaskSetPlans, with run, validate, and compact subcommands.
func NewRootCommand() *cobra.Command {
	var workspaceRoot string

	root := &cobra.Command{
		Use:   "codexcore",
		Short: "Agent-orchestration runtime: plan-driven task execution with hooks, layered config, and compaction",
	}
	root.PersistentFlags().StringVar(&workspaceRoot, "workspace", ".", "workspace root (config, hooks, to-dos, and session log all resolve relative to it)")

	root.AddCommand(newRunCommand(&workspaceRoot))
	root.AddCommand(newValidateCommand())
	root.AddCommand(newCompactCommand(&workspaceRoot))

	return root
}
