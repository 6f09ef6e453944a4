package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/services"
)

const templateSheet = "Marques"

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <out.xlsx>",
		Short: "Write an empty import workbook with the expected headers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeTemplate(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}

func writeTemplate(path string) error {
	if strings.ToLower(filepath.Ext(path)) != ".xlsx" {
		return withCode(exitUsage, fmt.Errorf("template must be an .xlsx file, got %q", path))
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return withCode(exitFile, err)
	}
	headers := make([]any, 0, len(services.Fields))
	for _, field := range services.Fields {
		headers = append(headers, services.TemplateHeaders[field])
	}
	if err := setHeaderRow(f, templateSheet, headers); err != nil {
		return withCode(exitFile, err)
	}
	if err := f.SaveAs(path); err != nil {
		return withCode(exitFile, fmt.Errorf("write template: %w", err))
	}
	return nil
}
