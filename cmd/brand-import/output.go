package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/services"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// printReport writes the counts followed by one line per skipped or failed
// row, in file order.
func printReport(w io.Writer, r *services.Report) error {
	var b strings.Builder
	mode := "applied"
	if r.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&b, "%s (%s)", r.Source, mode)
	if r.Sheet != "" {
		fmt.Fprintf(&b, " sheet %q", r.Sheet)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "created=%d updated=%d skipped=%d failed=%d total=%d\n",
		r.Counts.Created, r.Counts.Updated, r.Counts.Skipped, r.Counts.Failed, r.Total)
	if len(r.UnknownColumns) > 0 {
		fmt.Fprintf(&b, "ignored columns: %s\n", strings.Join(r.UnknownColumns, ", "))
	}
	for _, res := range r.Issues() {
		fmt.Fprintf(&b, "row %d (line %d) %s: %s\n", res.Row, res.Line, res.Outcome, res.Reason)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
