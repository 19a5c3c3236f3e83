package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set ID FIELD VALUE",
		Short: "Change one field of a task",
		Long: `Change one field of a task.

Fields: name, description, status, priority, type, deadline, assignee, athletes.
Use "none" to clear deadline, assignee or athletes. Athletes are comma separated.`,
		Args: exactArgs(3, "taskctl set ID FIELD VALUE"),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := parseField(args[1])
			if err != nil {
				return err
			}
			change, err := parseChange(field, args[2])
			if err != nil {
				return err
			}

			r := e.reconciler(cmd)
			if err := r.Load(cmd.Context()); err != nil {
				return err
			}
			updated, err := r.CommitField(cmd.Context(), args[0], change)
			if err != nil {
				return err
			}
			return renderTask(cmd.OutOrStdout(), updated, e.personNames(cmd), time.Now())
		},
	}
}
