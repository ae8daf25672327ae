package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.yaml>",
		Short: "Check a TaskSetPlan's structural invariants without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			problems := validatePlan(plan)
			if len(problems) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d set(s))\n", args[0], len(plan.Sets))
				return nil
			}
			for _, p := range problems {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}
}
