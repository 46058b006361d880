package guard

import "github.com/kavrelis/preflight/internal/check"

// Result is the aggregated outcome of one validation. Pass is derived,
// never stored: it is false exactly when a hard block exists. An
// approval-gated check keeps Pass true here; hosts must consult
// RequiresApproval before acting on Pass alone.
type Result struct {
	Pass            bool           `json:"pass"`
	Results         []check.Result `json:"results"`
	BlockingReasons []string       `json:"blocking_reasons,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// Aggregate derives a Result from check results. The input order is
// preserved; callers are responsible for handing results over in the
// fixed check-kind order.
func Aggregate(results []check.Result) Result {
	out := Result{Results: results}
	for _, r := range results {
		if r.Blocking() {
			out.BlockingReasons = append(out.BlockingReasons, r.Message)
		}
		if r.Severity == check.SeverityWarn {
			out.Warnings = append(out.Warnings, r.Message)
		}
	}
	out.Pass = len(out.BlockingReasons) == 0
	return out
}

// RequiresApproval reports whether any constituent check paused the
// validation pending a human decision.
func (r Result) RequiresApproval() bool {
	for _, c := range r.Results {
		if c.ApprovalGated() {
			return true
		}
	}
	return false
}

// ApprovalReasons collects the reasons of every gated check.
func (r Result) ApprovalReasons() []string {
	var reasons []string
	for _, c := range r.Results {
		if c.ApprovalGated() && c.Details != nil {
			reasons = append(reasons, c.Details.ApprovalReasons...)
		}
	}
	return reasons
}

// Decision summarizes the result for hosts and audit entries: pass, warn,
// approval_required or block.
func (r Result) Decision() string {
	switch {
	case !r.Pass:
		return "block"
	case r.RequiresApproval():
		return "approval_required"
	case len(r.Warnings) > 0:
		return "warn"
	default:
		return "pass"
	}
}
