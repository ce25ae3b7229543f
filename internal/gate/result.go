package gate

import (
	"fmt"
	"time"
)

// CheckStatus represents the result of a single check.
type CheckStatus int

const (
	// StatusPass indicates the check passed.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-fatal warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult holds the outcome of one boolean check within a gate.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Details string      `json:"details,omitempty"`
}

// GateResult aggregates the checks of one top-level gate.
type GateResult struct {
	Name   string        `json:"name"`
	Passed bool          `json:"passed"`
	Checks []CheckResult `json:"checks"`
	// Hint is the remediation shown when the gate fails.
	Hint string `json:"hint,omitempty"`
}

// finish sets Passed from the accumulated checks. Warnings do not fail
// a gate; only StatusFail does.
func (g *GateResult) finish() {
	g.Passed = true
	for _, c := range g.Checks {
		if c.Status == StatusFail {
			g.Passed = false
			return
		}
	}
}

// add appends a check result.
func (g *GateResult) add(c CheckResult) {
	g.Checks = append(g.Checks, c)
}

// Tally is the running score over all gates.
type Tally struct {
	Passed int `json:"passed"`
	Total  int `json:"total"`
}

// String formats the tally as "k/n".
func (t Tally) String() string {
	return fmt.Sprintf("%d/%d", t.Passed, t.Total)
}

// AllPassed reports whether every gate passed.
func (t Tally) AllPassed() bool {
	return t.Passed == t.Total
}

// Report is the outcome of a full validation run.
type Report struct {
	Root      string        `json:"root"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Gates     []GateResult  `json:"gates"`
	Tally     Tally         `json:"tally"`
}

// FailedGates returns the gates that did not pass, in run order.
func (r *Report) FailedGates() []GateResult {
	var failed []GateResult
	for _, g := range r.Gates {
		if !g.Passed {
			failed = append(failed, g)
		}
	}
	return failed
}
