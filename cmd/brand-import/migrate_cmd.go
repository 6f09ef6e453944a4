package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lgicquelw-tech/made-in-france-sub000/migrations"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending catalog schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), status)
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they are applied, without applying")
	return cmd
}

func runMigrate(ctx context.Context, out io.Writer, status bool) error {
	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	if status {
		statuses, err := migrations.CurrentStatus(ctx, pool)
		if err != nil {
			return withCode(exitDB, err)
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Fprintf(out, "%05d %-8s %s\n", s.Version, state, s.Path)
		}
		return nil
	}

	applied, err := migrations.Up(ctx, pool)
	if err != nil {
		return withCode(exitDB, err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "schema up to date")
		return nil
	}
	for _, a := range applied {
		fmt.Fprintf(out, "applied %05d %s\n", a.Version, a.Path)
	}
	return nil
}
