// Package plugin implements the Icinga/Nagios plugin output contract:
// a severity level, a single line of text on stdout, optional perfdata
// and an exit code between 0 and 3.
package plugin

import (
	"fmt"
	"io"
	"strings"
)

// Status is the severity of a check result.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

// String returns the level prefix used in plugin output.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps the status to the plugin exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusOK, StatusWarning, StatusCritical, StatusUnknown:
		return int(s)
	default:
		return 3
	}
}

// Combine folds a newly observed status into the running status of a check.
// CRITICAL is sticky and dominant, and UNKNOWN never downgrades an already
// detected WARNING or CRITICAL. This is not a numeric max: UNKNOWN loses
// against WARNING despite its higher exit code.
func Combine(newStatus, current Status) Status {
	switch {
	case newStatus == StatusCritical || current == StatusCritical:
		return StatusCritical
	case newStatus == StatusWarning && current != StatusCritical:
		return StatusWarning
	case newStatus == StatusUnknown && current != StatusWarning && current != StatusCritical:
		return StatusUnknown
	default:
		return StatusOK
	}
}

// PerfDatum is a single performance data token.
// Values are pre-formatted strings so callers control the exact rendering.
type PerfDatum struct {
	Label string
	Value string
	UOM   string
	Warn  string
	Crit  string
	Min   string
	Max   string
}

// String renders the token as 'label'=value[uom];warn;crit;min;max.
func (p PerfDatum) String() string {
	return fmt.Sprintf("'%s'=%s%s;%s;%s;%s;%s", p.Label, p.Value, p.UOM, p.Warn, p.Crit, p.Min, p.Max)
}

// FormatPerfData joins perfdata tokens with single spaces.
func FormatPerfData(data []PerfDatum) string {
	tokens := make([]string, len(data))
	for i, d := range data {
		tokens[i] = d.String()
	}
	return strings.Join(tokens, " ")
}

// Result is the outcome of one check invocation.
type Result struct {
	Status   Status
	Summary  string
	PerfData []PerfDatum
}

// Fatal converts an unrecoverable error into an UNKNOWN result without
// perfdata. Severity raised by check logic is not an error and never goes
// through here.
func Fatal(err error) *Result {
	return &Result{
		Status:  StatusUnknown,
		Summary: err.Error(),
	}
}

// Exit writes the single plugin output line and returns the exit code.
// Perfdata is prefixed with " | " only when present.
func Exit(w io.Writer, res *Result) int {
	perf := FormatPerfData(res.PerfData)
	if perf != "" {
		perf = " | " + perf
	}
	fmt.Fprintf(w, "%s - %s%s\n", res.Status, res.Summary, perf)
	return res.Status.ExitCode()
}

// Description is the self-description format for check modes.
type Description struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}
