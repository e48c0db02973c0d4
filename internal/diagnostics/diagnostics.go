// Package diagnostics collects structural findings produced while an MFS
// partition is reconstructed. Every component returns its own Collector and
// the engine merges them in processing order.
package diagnostics

import (
	"fmt"
	"strings"
)

// Severity tags a diagnostic as fatal, advisory or informational.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityAdvisory
	SeverityFatal
)

// String returns the severity label
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityAdvisory:
		return "ADVISORY"
	case SeverityFatal:
		return "FATAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText lets JSON and YAML output use the label.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Component names used as diagnostic sources
const (
	ComponentPages    = "pages"
	ComponentChunks   = "chunks"
	ComponentVolume   = "volume"
	ComponentFAT      = "fat"
	ComponentDispatch = "dispatch"
	ComponentHome     = "home"
	ComponentConfig   = "config"
	ComponentFTBL     = "filetable"
	ComponentBackup   = "backup"
)

// Diagnostic is one finding.
type Diagnostic struct {
	Severity  Severity `json:"severity" yaml:"severity"`
	Component string   `json:"component" yaml:"component"`
	Message   string   `json:"message" yaml:"message"`
}

// String formats the diagnostic on one line
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Component, d.Message)
}

// Collector is an ordered list of diagnostics. The zero value is ready to use.
type Collector struct {
	items []Diagnostic
}

// Add appends a diagnostic.
func (c *Collector) Add(severity Severity, component, format string, args ...interface{}) {
	c.items = append(c.items, Diagnostic{
		Severity:  severity,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	})
}

// Advisory appends an advisory diagnostic.
func (c *Collector) Advisory(component, format string, args ...interface{}) {
	c.Add(SeverityAdvisory, component, format, args...)
}

// Fatal appends a fatal diagnostic.
func (c *Collector) Fatal(component, format string, args ...interface{}) {
	c.Add(SeverityFatal, component, format, args...)
}

// Info appends an informational diagnostic.
func (c *Collector) Info(component, format string, args ...interface{}) {
	c.Add(SeverityInfo, component, format, args...)
}

// Merge appends all diagnostics of other, keeping their order.
func (c *Collector) Merge(other Collector) {
	c.items = append(c.items, other.items...)
}

// Items returns a copy of the collected diagnostics.
func (c Collector) Items() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of diagnostics.
func (c Collector) Len() int {
	return len(c.items)
}

// Count returns the number of diagnostics with the given severity.
func (c Collector) Count(severity Severity) int {
	n := 0
	for _, d := range c.items {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// HasFatal reports whether any fatal diagnostic was collected.
func (c Collector) HasFatal() bool {
	return c.Count(SeverityFatal) > 0
}

// Filter returns the diagnostics of one severity.
func (c Collector) Filter(severity Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.items {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}

// String joins all diagnostics, one per line
func (c Collector) String() string {
	lines := make([]string, len(c.items))
	for i, d := range c.items {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
