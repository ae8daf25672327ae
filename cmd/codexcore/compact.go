package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codexcore/runtime/internal/compactor"
	"github.com/codexcore/runtime/internal/config"
	"github.com/codexcore/runtime/internal/logging"
)

func newCompactCommand(workspaceRoot *string) *cobra.Command {
	var (
		focus        string
		tail         string
		includeGlobs []string
	)

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Select focus files and assemble a manual-mode compaction prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewComponentLogger("codexcore")

			store, err := config.NewStore(*workspaceRoot, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg := store.Snapshot()

			c := compactor.New(*workspaceRoot, logger)
			result, err := c.Manual(focus, tail, includeGlobs, cfg.Compact, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("compact: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) selected:\n", len(result.Files))
			for _, f := range result.Files {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", f)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), result.FocusPrompt)

			c.Complete(time.Now().UTC())
			return nil
		},
	}
	cmd.Flags().StringVar(&focus, "focus", "", "user focus text to prefix the summary prompt with")
	cmd.Flags().StringVar(&tail, "tail", "", "conversation tail to include as context")
	cmd.Flags().StringSliceVar(&includeGlobs, "include", nil, "include-glob override (repeatable); empty uses the configured defaults")
	return cmd
}
