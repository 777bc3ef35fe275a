package model

import (
	"strings"
	"time"
)

// FlagSeverity is the leading severity marker on an analysis flag.
type FlagSeverity string

const (
	SeverityCritical FlagSeverity = "CRITICAL"
	SeverityHigh     FlagSeverity = "HIGH"
	SeverityMedium   FlagSeverity = "MEDIUM"
	SeverityLow      FlagSeverity = "LOW"
	SeverityNone     FlagSeverity = ""
)

// SeverityOf parses the severity prefix of a flag string. Flags without
// a recognized "SEVERITY:" prefix report SeverityNone.
func SeverityOf(flag string) FlagSeverity {
	head, _, ok := strings.Cut(flag, ":")
	if !ok {
		return SeverityNone
	}
	switch FlagSeverity(strings.ToUpper(strings.TrimSpace(head))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// CountFlags returns how many flags carry the given severity.
func CountFlags(flags []string, sev FlagSeverity) int {
	n := 0
	for _, f := range flags {
		if SeverityOf(f) == sev {
			n++
		}
	}
	return n
}

// UnitResult is the uniform output of one analysis unit. Every field is
// always populated; a unit that could not complete normally sets
// Degraded and reports a single CRITICAL flag describing the failure.
type UnitResult struct {
	UnitName        string             `json:"unit_name"`
	Confidence      float64            `json:"confidence"`
	Completeness    float64            `json:"completeness"`
	Findings        []string           `json:"findings"`
	Metrics         map[string]float64 `json:"metrics"`
	Recommendations []string           `json:"recommendations"`
	Flags           []string           `json:"flags"`
	Degraded        bool               `json:"degraded,omitempty"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// CriticalFlags returns the flags with CRITICAL severity.
func (r UnitResult) CriticalFlags() []string {
	out := []string{}
	for _, f := range r.Flags {
		if SeverityOf(f) == SeverityCritical {
			out = append(out, f)
		}
	}
	return out
}
