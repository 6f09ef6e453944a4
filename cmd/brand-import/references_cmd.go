package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/entities/reference"
	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/infrastructure/persistence"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/composables"
)

func newReferencesCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "references",
		Short: "List the regions, sectors and categories an import resolves against",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if kind == "" {
				return nil
			}
			if _, err := reference.ParseKind(kind); err != nil {
				return withCode(exitUsage, fmt.Errorf("--kind: %w", err))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReferences(cmd.Context(), cmd.OutOrStdout(), kind)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list one kind: region|sector|category")
	return cmd
}

func runReferences(ctx context.Context, out io.Writer, kind string) error {
	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	ix, err := reference.BuildIndex(ctx, persistence.NewReferenceRepository())
	if err != nil {
		return withCode(exitDB, err)
	}
	return printReferences(out, ix, kind)
}

func printReferences(out io.Writer, ix *reference.Index, only string) error {
	kinds := reference.Kinds
	if only != "" {
		k, err := reference.ParseKind(only)
		if err != nil {
			return withCode(exitUsage, err)
		}
		kinds = []reference.Kind{k}
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tSLUG\tID")
	for _, k := range kinds {
		for _, r := range ix.List(k) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k, r.Name, r.Slug, r.ID)
		}
	}
	return tw.Flush()
}
