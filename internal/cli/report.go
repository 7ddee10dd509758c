package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/stackvity/json2csv/pkg/converter"
)

// writeReport prints report in format. The text report is omitted for a
// clean single-input run so stdout pipelines stay quiet.
func writeReport(w io.Writer, report converter.Report, format converter.ReportFormat, jobCount int) error {
	if format == converter.ReportFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if jobCount <= 1 && report.Summary.ErrorCount == 0 {
		return nil
	}
	_, err := io.WriteString(w, formatTextReport(lipgloss.NewRenderer(w), report))
	return err
}

func formatTextReport(r *lipgloss.Renderer, report converter.Report) string {
	okStyle := r.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
	failStyle := r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle := r.NewStyle().Foreground(lipgloss.Color("244"))

	s := report.Summary
	var b strings.Builder
	headline := okStyle.Render("Converted")
	if s.ErrorCount > 0 {
		headline = failStyle.Render("Converted")
	}
	fmt.Fprintf(&b, "%s %d of %d inputs, %d rows in %.2fs\n", headline, s.ProcessedCount, s.InputCount, s.RowCount, s.DurationSeconds)
	if skipped := s.InputCount - s.ProcessedCount - s.ErrorCount; skipped > 0 {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("Skipped %d inputs", skipped)))
	}
	if len(report.Errors) > 0 {
		fmt.Fprintf(&b, "%s\n", failStyle.Render(fmt.Sprintf("Failed %d:", len(report.Errors))))
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "  %s: %s\n", e.Path, e.Error)
		}
	}
	if s.FatalErrorOccurred {
		fmt.Fprintf(&b, "%s\n", failStyle.Render("Run stopped after the first failure (onError=stop)"))
	}
	return b.String()
}
