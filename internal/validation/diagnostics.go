// Package validation checks a parsed CLI description for structural and
// cross-target correctness before any IR is built.
//
// Findings are reported as Diagnostics collected into a Report; validators
// never fail with an error for problems in user data. Errors are reserved
// for framework misconfiguration such as cyclic validator dependencies.
package validation

import (
	"fmt"
	"sort"
)

// Severity classifies a single validation finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// rank orders severities for display, most severe first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityError:
		return 1
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 3
	default:
		return 4
	}
}

// Fails reports whether a diagnostic of this severity blocks the pipeline.
func (s Severity) Fails() bool {
	return s == SeverityError || s == SeverityCritical
}

// Diagnostic is one validation finding. Location is a dotted path into the
// source description, for example "cli.commands.build.options[2]".
// Diagnostics are created by validators and never mutated afterwards.
type Diagnostic struct {
	Location   string
	Severity   Severity
	Message    string
	Suggestion string
}

func (d Diagnostic) String() string {
	out := string(d.Severity)
	if d.Location != "" {
		out += " at " + d.Location
	}
	out += ": " + d.Message
	if d.Suggestion != "" {
		out += " (suggestion: " + d.Suggestion + ")"
	}
	return out
}

// Report is the outcome of one validation run. Diagnostics are ordered by
// severity (critical, error, warning, info), preserving the original
// relative order within each tier.
type Report struct {
	Diagnostics []Diagnostic
	Target      string
	Mode        Mode
}

func newReport(target string, mode Mode, diags []Diagnostic) *Report {
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.rank() < sorted[j].Severity.rank()
	})
	return &Report{Diagnostics: sorted, Target: target, Mode: mode}
}

// IsValid reports whether the pipeline may proceed to IR building. Errors
// and criticals always fail; in strict mode warnings fail too.
func (r *Report) IsValid() bool {
	for _, d := range r.Diagnostics {
		if d.Severity.Fails() {
			return false
		}
		if r.Mode == ModeStrict && d.Severity == SeverityWarning {
			return false
		}
	}
	return true
}

// Errors returns the error and critical diagnostics.
func (r *Report) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity.Fails() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the warning diagnostics.
func (r *Report) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Counts returns the number of diagnostics per severity.
func (r *Report) Counts() map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, d := range r.Diagnostics {
		counts[d.Severity]++
	}
	return counts
}

// Summary renders a one-line human summary of the run.
func (r *Report) Summary() string {
	counts := r.Counts()
	if r.IsValid() {
		if w := counts[SeverityWarning]; w > 0 {
			return fmt.Sprintf("validation passed (%d warnings)", w)
		}
		return "validation passed"
	}
	failing := counts[SeverityError] + counts[SeverityCritical]
	if r.Mode == ModeStrict {
		failing += counts[SeverityWarning]
	}
	return fmt.Sprintf("validation failed (%d blocking findings)", failing)
}
