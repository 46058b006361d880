package approval

import "time"

// RequestStatus is the lifecycle state of an approval request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusExpired  RequestStatus = "expired"
)

// Request is a persisted approval request record. Fingerprint ties the
// request to the exact action that was gated; a re-run of the same
// action reuses the open request instead of filing a duplicate.
type Request struct {
	ID           string        `json:"id"`
	Fingerprint  string        `json:"fingerprint"`
	ActionKind   string        `json:"action_kind"`
	TargetPath   string        `json:"target_path"`
	Reasons      []string      `json:"reasons,omitempty"`
	DecisionNote string        `json:"decision_note,omitempty"`
	Status       RequestStatus `json:"status"`
	RequestedAt  time.Time     `json:"requested_at"`
	ExpiresAt    time.Time     `json:"expires_at,omitempty"`
	DecidedAt    time.Time     `json:"decided_at,omitempty"`
	DecidedBy    string        `json:"decided_by,omitempty"`
}

// CreateInput contains fields needed to file an approval request.
type CreateInput struct {
	Fingerprint string
	ActionKind  string
	TargetPath  string
	Reasons     []string
	TTL         time.Duration
}

// DecisionInput contains fields needed to approve/reject a request.
type DecisionInput struct {
	DecidedBy string
	Note      string
}

// Query filters approval requests when listing.
type Query struct {
	ID          string
	Status      RequestStatus
	Fingerprint string
	Path        string
}
