// Package formatter renders reconciliation run reports: the persisted JSON
// artifact and the operator-facing summary block.
package formatter

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// DefaultReportPath is where the run report lands when no path is configured.
const DefaultReportPath = "migration-report-users.json"

// WriteRunReport serializes the report as indented JSON at path, overwriting
// any prior report. The report must not be mutated after this call.
func WriteRunReport(report *models.RunReport, path string) (string, error) {
	if path == "" {
		path = DefaultReportPath
	}

	data, err := shared.MarshalJSON(report, true)
	if err != nil {
		return "", fmt.Errorf("failed to serialize run report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}

	return path, nil
}

var (
	summaryTitleStyle  = lipgloss.NewStyle().Bold(true)
	summaryBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				Padding(0, 1)
	summaryErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderSummary renders the six aggregate numbers of a run as a framed block.
// Informational only; the persisted artifact is the JSON report.
func RenderSummary(report *models.RunReport) string {
	var b strings.Builder

	b.WriteString(summaryTitleStyle.Render("Migration Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total external identities: %d\n", report.Stats.TotalExternalIdentities)
	fmt.Fprintf(&b, "Total platform users:      %d\n", report.Stats.TotalPlatformUsers)
	fmt.Fprintf(&b, "Matched users:             %d\n", report.Stats.MatchedUsers)
	fmt.Fprintf(&b, "Updated users:             %d\n", report.Stats.UpdatedUsers)
	fmt.Fprintf(&b, "Skipped users:             %d\n", report.Stats.SkippedUsers)
	fmt.Fprintf(&b, "Errors:                    %d", report.Stats.Errors)

	block := summaryBorderStyle.Render(b.String())

	if len(report.Errors) > 0 {
		note := summaryErrorStyle.Render(fmt.Sprintf("Completed with %d errors. Check the report for details.", len(report.Errors)))
		return block + "\n" + note
	}
	return block
}
