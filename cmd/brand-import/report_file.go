package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/services"
)

const reportSheet = "Rapport"

var reportColumns = []any{"row", "line", "outcome", "slug", "name", "reason"}

func reportFileSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".xlsx":
		return true
	default:
		return false
	}
}

func writeReportFile(path string, r *services.Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(raw, '\n'), 0o644)
	case ".xlsx":
		return writeReportXLSX(path, r)
	default:
		return fmt.Errorf("unsupported report format %q (expected .json or .xlsx)", filepath.Ext(path))
	}
}

func writeReportXLSX(path string, r *services.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	if err := setHeaderRow(f, reportSheet, reportColumns); err != nil {
		return err
	}
	for i, res := range r.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{res.Row, res.Line, string(res.Outcome), res.Slug, res.Name, res.Reason}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// setHeaderRow writes values on the first row in bold and freezes it.
func setHeaderRow(f *excelize.File, sheet string, values []any) error {
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
