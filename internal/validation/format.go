package validation

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	errorColor    = color.New(color.FgRed)
	warningColor  = color.New(color.FgYellow)
	infoColor     = color.New(color.FgCyan)
	locationColor = color.New(color.Faint)
	passColor     = color.New(color.FgGreen, color.Bold)
	failColor     = color.New(color.FgRed, color.Bold)
)

func severityColor(s Severity) *color.Color {
	switch s {
	case SeverityCritical:
		return criticalColor
	case SeverityError:
		return errorColor
	case SeverityWarning:
		return warningColor
	default:
		return infoColor
	}
}

// WriteReport renders a report for terminal display, one line per finding
// plus an optional indented suggestion line, followed by the summary.
func WriteReport(w io.Writer, report *Report) {
	for _, d := range report.Diagnostics {
		severityColor(d.Severity).Fprintf(w, "%-8s", d.Severity)
		if d.Location != "" {
			locationColor.Fprintf(w, " %s", d.Location)
		}
		fmt.Fprintf(w, "  %s\n", d.Message)
		if d.Suggestion != "" {
			locationColor.Fprintf(w, "%-8s   hint: %s\n", "", d.Suggestion)
		}
	}

	if len(report.Diagnostics) > 0 {
		fmt.Fprintln(w)
	}
	if report.IsValid() {
		passColor.Fprint(w, "PASS")
	} else {
		failColor.Fprint(w, "FAIL")
	}
	fmt.Fprintf(w, "  %s (target %s, %s mode)\n", report.Summary(), report.Target, report.Mode)
}
