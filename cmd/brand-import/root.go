package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "brand-import",
		Short:         "Import Made in France brands from a spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newReferencesCmd())
	cmd.AddCommand(newTemplateCmd())
	return cmd
}

// run executes the command tree under ctx. An interrupt cancels ctx: the
// import marks the row in progress and every later one as failed and still
// prints its report.
func run(ctx context.Context, args []string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		cancel()
		os.Exit(code)
	}
}
