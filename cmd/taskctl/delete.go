package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    exactArgs(1, "taskctl delete ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := e.reconciler(cmd)
			if err := r.Load(cmd.Context()); err != nil {
				return err
			}
			if err := r.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
