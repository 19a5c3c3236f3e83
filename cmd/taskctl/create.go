package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/llalegg/rd-tasks-sub000/internal/reconcile"
)

// createFlags lists the optional fields in the order they are committed after
// the name.
var createFlags = []reconcile.Field{
	reconcile.FieldDescription,
	reconcile.FieldType,
	reconcile.FieldStatus,
	reconcile.FieldPriority,
	reconcile.FieldDeadline,
	reconcile.FieldAssignee,
	reconcile.FieldAthletes,
}

func newCreateCmd(e *env) *cobra.Command {
	values := make(map[reconcile.Field]*string, len(createFlags))

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a task; the first saved field creates it on the server",
		Args:  exactArgs(1, "taskctl create NAME [flags]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			nameChange, err := parseChange(reconcile.FieldName, args[0])
			if err != nil {
				return err
			}
			changes := []reconcile.Change{nameChange}

			for _, field := range createFlags {
				if !cmd.Flags().Changed(flagName(field)) {
					continue
				}
				ch, err := parseChange(field, *values[field])
				if err != nil {
					return err
				}
				changes = append(changes, ch)
			}

			var opts []reconcile.Option
			if fallback := e.v.GetString("fallback-assignee"); fallback != "" {
				opts = append(opts, reconcile.WithFallbackAssignee(fallback))
			}
			r := e.reconciler(cmd, opts...)

			id := r.CreateDraft().ID
			for _, ch := range changes {
				if _, err := r.CommitField(cmd.Context(), id, ch); err != nil {
					return err
				}
			}

			created, _ := r.Store().Get(r.Resolve(id))
			return renderTask(cmd.OutOrStdout(), created, e.personNames(cmd), time.Now())
		},
	}

	f := cmd.Flags()
	for _, field := range createFlags {
		values[field] = f.String(flagName(field), "", "initial "+flagName(field))
	}
	f.String("fallback-assignee", "", "assignee sent when none is set (TASKCTL_FALLBACK_ASSIGNEE)")
	_ = e.v.BindPFlag("fallback-assignee", f.Lookup("fallback-assignee"))
	return cmd
}

func flagName(field reconcile.Field) string {
	switch field {
	case reconcile.FieldAssignee:
		return "assignee"
	case reconcile.FieldAthletes:
		return "athletes"
	}
	return string(field)
}
