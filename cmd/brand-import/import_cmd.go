package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/infrastructure/persistence"
	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/services"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/composables"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/configuration"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/metrics"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/spreadsheet"
)

type importOptions struct {
	path        string
	sheet       string
	columnsFile string
	format      string
	reportPath  string
	metricsFile string
	dryRun      bool
	strict      bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.xls|file.csv>",
		Short: "Import brands from a spreadsheet (created/updated/skipped/failed per row)",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateImportOptions(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.path = args[0]
			conf := configuration.Use()
			if opts.columnsFile == "" {
				opts.columnsFile = conf.Import.ColumnsFile
			}
			if opts.metricsFile == "" {
				opts.metricsFile = conf.Import.MetricsFile
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), conf.Logger(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate and report without writing")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "worksheet name (.xlsx/.xls; default first sheet)")
	cmd.Flags().StringVar(&opts.columnsFile, "columns", "", "YAML file with extra header aliases (default $IMPORT_COLUMNS_FILE)")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "output format: text|json")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "also write the report to a .json or .xlsx file")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format (default $IMPORT_METRICS_FILE)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with code 2 when any row failed")
	return cmd
}

func validateImportOptions(opts importOptions) error {
	switch opts.format {
	case formatText, formatJSON:
	default:
		return withCode(exitUsage, fmt.Errorf("unsupported --format: %s (expected text|json)", opts.format))
	}
	if opts.reportPath != "" && !reportFileSupported(opts.reportPath) {
		return withCode(exitUsage, fmt.Errorf("unsupported --report file %q (expected .json or .xlsx)", opts.reportPath))
	}
	return nil
}

func runImport(ctx context.Context, out io.Writer, logger *logrus.Logger, opts importOptions) error {
	if strings.TrimSpace(opts.path) == "" {
		return withCode(exitUsage, errors.New("input file is required"))
	}

	table, aliases, err := loadInput(opts)
	if err != nil {
		return err
	}

	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	svc := services.NewImportService(
		persistence.NewBrandRepository(),
		persistence.NewReferenceRepository(),
		services.WithTransactor(persistence.InTx),
		services.WithLogger(logger),
		services.WithAliases(aliases),
	)
	report, err := svc.Run(ctx, table, services.ImportOptions{DryRun: opts.dryRun, Source: opts.path})
	if err != nil {
		if errors.Is(err, services.ErrHeader) {
			return withCode(exitValidation, err)
		}
		return withCode(exitDB, err)
	}
	return finishImport(out, report, opts)
}

// loadInput reads everything the run needs from disk before the database
// is touched, so a bad file never costs a connection.
func loadInput(opts importOptions) (*spreadsheet.Table, services.Aliases, error) {
	table, err := spreadsheet.Load(opts.path, spreadsheet.Options{Sheet: opts.sheet})
	if err != nil {
		return nil, nil, withCode(exitFile, err)
	}

	aliases := services.DefaultAliases()
	if opts.columnsFile != "" {
		aliases, err = services.LoadAliases(opts.columnsFile)
		if err != nil {
			return nil, nil, withCode(exitUsage, fmt.Errorf("--columns: %w", err))
		}
	}
	return table, aliases, nil
}

func finishImport(out io.Writer, report *services.Report, opts importOptions) error {
	var err error
	if opts.format == formatJSON {
		err = writeJSONLine(out, report)
	} else {
		err = printReport(out, report)
	}
	if err != nil {
		return err
	}

	if opts.reportPath != "" {
		if err := writeReportFile(opts.reportPath, report); err != nil {
			return withCode(exitFile, fmt.Errorf("write report: %w", err))
		}
	}
	if opts.metricsFile != "" {
		if err := writeMetrics(opts.metricsFile, report); err != nil {
			return withCode(exitFile, err)
		}
	}

	if opts.strict && report.Counts.Failed > 0 {
		return withCode(exitValidation, fmt.Errorf("%d of %d rows failed", report.Counts.Failed, report.Total))
	}
	return nil
}

func writeMetrics(path string, report *services.Report) error {
	outcomes := make(map[string]int, 4)
	for _, o := range []services.Outcome{
		services.OutcomeCreated,
		services.OutcomeUpdated,
		services.OutcomeSkipped,
		services.OutcomeFailed,
	} {
		outcomes[string(o)] = report.Counts.Of(o)
	}

	m := metrics.NewImportMetrics()
	m.Record(metrics.Run{
		Outcomes:   outcomes,
		Duration:   report.Duration(),
		FinishedAt: report.FinishedAt,
		DryRun:     report.DryRun,
	})
	return m.WriteTextfile(path)
}
