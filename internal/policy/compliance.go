package policy

import (
	"strings"
	"sync"

	"github.com/kavrelis/preflight/internal/action"
	"github.com/kavrelis/preflight/internal/check"
)

// Comply evaluates one action against doc and classifies the outcome:
// any error violation blocks; a clean action with approval triggers is
// gated (warn, fail, reasons attached); warning-only violations are
// advisory; otherwise pass. A nil document passes everything.
func Comply(a action.Action, doc *Document) check.Result {
	if doc == nil {
		return check.Pass(check.KindPolicyCompliance, "no policy configured")
	}
	ev := Evaluate(a, doc)

	var errs, warns []string
	for _, v := range ev.Violations {
		if v.Severity == check.ViolationError {
			errs = append(errs, v.Message)
		} else {
			warns = append(warns, v.Message)
		}
	}

	switch {
	case len(errs) > 0:
		return check.Block(check.KindPolicyCompliance, strings.Join(errs, "; ")).
			WithDetails(&check.Details{Violations: ev.Violations, ApprovalReasons: ev.ApprovalReasons})
	case ev.RequiresApproval:
		r := check.Gated(check.KindPolicyCompliance,
			"requires approval: "+strings.Join(ev.ApprovalReasons, "; "), ev.ApprovalReasons)
		r.Details.Violations = ev.Violations
		return r
	case len(warns) > 0:
		return check.Advisory(check.KindPolicyCompliance, strings.Join(warns, "; ")).
			WithDetails(&check.Details{Violations: ev.Violations})
	default:
		return check.Pass(check.KindPolicyCompliance, "complies with policy")
	}
}

// ComplyAll evaluates actions independently and concurrently. Results
// follow the input order.
func ComplyAll(actions []action.Action, doc *Document) []check.Result {
	results := make([]check.Result, len(actions))
	var wg sync.WaitGroup
	for i, a := range actions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Comply(a, doc)
		}()
	}
	wg.Wait()
	return results
}
