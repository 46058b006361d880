// Package check defines the shared result taxonomy produced by the
// validation engines. Every engine reports through the same tagged Result
// record so the orchestrator and hosts can reason about outcomes uniformly.
package check

// Kind identifies the engine that produced a result.
type Kind string

const (
	KindFileExistence    Kind = "file_existence"
	KindImportValidity   Kind = "import_validity"
	KindSyntaxValidity   Kind = "syntax_validity"
	KindPolicyCompliance Kind = "policy_compliance"
)

// KindOrder returns the fixed reporting order for results. Aggregated
// output is always sorted this way, never by completion order.
func KindOrder() []Kind {
	return []Kind{KindFileExistence, KindImportValidity, KindSyntaxValidity, KindPolicyCompliance}
}

// Severity grades a result. The pairing with Pass is constrained:
// block implies Pass==false, info implies Pass==true, and warn pairs with
// either. A warn result that fails is gated on approval rather than
// rejected outright.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// Diagnostic points at a position in proposed content. Line and Column are
// 1-based.
type Diagnostic struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// ViolationSeverity grades a policy finding before classification.
type ViolationSeverity string

const (
	ViolationError   ViolationSeverity = "error"
	ViolationWarning ViolationSeverity = "warning"
)

// Violation is a single policy finding. Rule names the policy section that
// produced it.
type Violation struct {
	Severity ViolationSeverity `json:"severity"`
	Message  string            `json:"message"`
	Rule     string            `json:"rule,omitempty"`
}

// Details carries the structured payload of a result. Only the fields
// relevant to the producing engine are set.
type Details struct {
	Specifier       string       `json:"specifier,omitempty"`
	TriedPaths      []string     `json:"tried_paths,omitempty"`
	Diagnostics     []Diagnostic `json:"diagnostics,omitempty"`
	Violations      []Violation  `json:"violations,omitempty"`
	ApprovalReasons []string     `json:"approval_reasons,omitempty"`
	Err             string       `json:"error,omitempty"`
}

// Result is the outcome of one engine run. Engines may emit several per
// action (one per import, for example). Construct results through Pass,
// Advisory, Gated and Block so the severity pairing stays consistent.
type Result struct {
	Pass     bool     `json:"pass"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Details  *Details `json:"details,omitempty"`
}

// Pass reports a clean outcome.
func Pass(kind Kind, message string) Result {
	return Result{Pass: true, Kind: kind, Severity: SeverityInfo, Message: message}
}

// Advisory reports a concern that does not fail the action.
func Advisory(kind Kind, message string) Result {
	return Result{Pass: true, Kind: kind, Severity: SeverityWarn, Message: message}
}

// Gated reports an action that must pause for human approval. It fails the
// action without branding it invalid; the reasons travel in Details.
func Gated(kind Kind, message string, reasons []string) Result {
	return Result{
		Pass:     false,
		Kind:     kind,
		Severity: SeverityWarn,
		Message:  message,
		Details:  &Details{ApprovalReasons: reasons},
	}
}

// Block reports a hard failure.
func Block(kind Kind, message string) Result {
	return Result{Pass: false, Kind: kind, Severity: SeverityBlock, Message: message}
}

// WithDetails returns a copy of r carrying d.
func (r Result) WithDetails(d *Details) Result {
	r.Details = d
	return r
}

// Blocking reports whether r is a hard failure.
func (r Result) Blocking() bool {
	return !r.Pass && r.Severity == SeverityBlock
}

// ApprovalGated reports whether r failed only pending approval.
func (r Result) ApprovalGated() bool {
	return !r.Pass && r.Severity == SeverityWarn
}
