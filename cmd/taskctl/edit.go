package main

import (
	"bufio"
	"time"

	"github.com/spf13/cobra"

	"github.com/llalegg/rd-tasks-sub000/internal/reconcile"
)

func newEditCmd(e *env) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "edit ID name|description",
		Short: "Edit a text field from stdin with autosave",
		Long: `Edit a text field from stdin with autosave.

Every line read replaces the field value. A pause longer than --debounce saves
the latest line; end of input saves whatever is pending.`,
		Args: exactArgs(2, "taskctl edit ID name|description"),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := parseField(args[1])
			if err != nil {
				return err
			}

			r := e.reconciler(cmd, reconcile.WithDebounce(debounce))
			if err := r.Load(cmd.Context()); err != nil {
				return err
			}
			editor, err := r.Editor(args[0], field)
			if err != nil {
				return err
			}
			defer editor.Close()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				editor.Type(scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				editor.Cancel()
				return err
			}

			saved, err := editor.Confirm(cmd.Context())
			if err != nil {
				return err
			}
			return renderTask(cmd.OutOrStdout(), saved, e.personNames(cmd), time.Now())
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", reconcile.DefaultDebounce, "quiet period before an autosave")
	return cmd
}
