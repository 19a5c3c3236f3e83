package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/llalegg/rd-tasks-sub000/internal/client"
	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/reconcile"
)

// env holds what every subcommand needs once flags and environment are read.
type env struct {
	v      *viper.Viper
	client *client.Client
}

func newRootCmd() *cobra.Command {
	e := &env{v: viper.New()}

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Sports-team task tracker client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if e.v.GetBool("verbose") {
				if err := logger.Init(true); err != nil {
					return err
				}
			}
			color.NoColor = color.NoColor || e.v.GetBool("no-color")
			e.client = client.New(e.v.GetString("server"), client.WithTimeout(e.v.GetDuration("timeout")))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8080", "task API base URL (TASKCTL_SERVER)")
	flags.Duration("timeout", 10*time.Second, "per-request timeout (TASKCTL_TIMEOUT)")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("verbose", false, "log requests to stderr")

	e.v.SetEnvPrefix("TASKCTL")
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()
	_ = e.v.BindPFlags(flags)

	root.AddCommand(
		newListCmd(e),
		newCreateCmd(e),
		newSetCmd(e),
		newEditCmd(e),
		newDeleteCmd(e),
	)
	return root
}

// reconciler reports failures on the command's stderr.
func (e *env) reconciler(cmd *cobra.Command, opts ...reconcile.Option) *reconcile.Reconciler {
	warn := color.New(color.FgYellow)
	listener := reconcile.ListenerFuncs{
		OnRemoved: func(id string) {
			warn.Fprintf(cmd.ErrOrStderr(), "task %s no longer exists on the server\n", id)
		},
		OnFailed: func(id string, field reconcile.Field, err error) {
			warn.Fprintf(cmd.ErrOrStderr(), "saving %s of %s failed: %v\n", field, id, err)
		},
	}
	opts = append([]reconcile.Option{reconcile.WithListener(listener)}, opts...)
	return reconcile.New(e.client, opts...)
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}
}
