package approval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultTTL = 24 * time.Hour

// Service orchestrates the approval request lifecycle.
type Service struct {
	store      *Store
	defaultTTL time.Duration
	now        func() time.Time
	mu         sync.Mutex
}

// NewService creates a service backed by <root>/.preflight/approvals.json.
func NewService(root string) *Service {
	return &Service{
		store:      NewStore(root),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Create inserts a new pending approval request.
func (s *Service) Create(input CreateInput) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load()
	if err != nil {
		return Request{}, err
	}
	return s.createLocked(&data, input)
}

// Ensure files a pending request for the fingerprint unless an open one
// already exists. An open request is pending and unexpired, or already
// approved. The bool reports whether a new request was filed.
func (s *Service) Ensure(input CreateInput) (Request, bool, error) {
	fingerprint := strings.TrimSpace(input.Fingerprint)
	if fingerprint == "" {
		return Request{}, false, fmt.Errorf("fingerprint is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load()
	if err != nil {
		return Request{}, false, err
	}

	now := s.now().UTC()
	for _, req := range data.Requests {
		if req.Fingerprint != fingerprint {
			continue
		}
		if req.Status == StatusApproved {
			return req, false, nil
		}
		if req.Status == StatusPending && (req.ExpiresAt.IsZero() || req.ExpiresAt.After(now)) {
			return req, false, nil
		}
	}

	created, err := s.createLocked(&data, input)
	if err != nil {
		return Request{}, false, err
	}
	return created, true, nil
}

// Granted reports whether the fingerprint has an approved request.
func (s *Service) Granted(fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load()
	if err != nil {
		return false, err
	}
	for _, req := range data.Requests {
		if req.Fingerprint == fingerprint && req.Status == StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

// Approve marks a pending request as approved.
func (s *Service) Approve(id string, decision DecisionInput) (Request, error) {
	return s.decide(id, StatusApproved, decision, "approved")
}

// Reject marks a pending request as rejected.
func (s *Service) Reject(id string, decision DecisionInput) (Request, error) {
	return s.decide(id, StatusRejected, decision, "rejected")
}

// List returns requests filtered by query values.
func (s *Service) List(query Query) ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	idFilter := strings.TrimSpace(query.ID)
	statusFilter := strings.TrimSpace(string(query.Status))
	fingerprintFilter := strings.TrimSpace(query.Fingerprint)
	pathFilter := strings.TrimSpace(query.Path)

	result := make([]Request, 0, len(data.Requests))
	for _, req := range data.Requests {
		if idFilter != "" && req.ID != idFilter {
			continue
		}
		if statusFilter != "" && string(req.Status) != statusFilter {
			continue
		}
		if fingerprintFilter != "" && req.Fingerprint != fingerprintFilter {
			continue
		}
		if pathFilter != "" && !strings.EqualFold(req.TargetPath, pathFilter) {
			continue
		}
		result = append(result, req)
	}
	sortRequests(result)
	return result, nil
}

// sortRequests orders requests by numeric id, oldest first, so listings
// are stable regardless of ledger map iteration order.
func sortRequests(requests []Request) {
	sort.Slice(requests, func(i, j int) bool {
		a, aerr := strconv.ParseInt(requests[i].ID, 10, 64)
		b, berr := strconv.ParseInt(requests[j].ID, 10, 64)
		if aerr == nil && berr == nil && a != b {
			return a < b
		}
		return requests[i].ID < requests[j].ID
	})
}

// ExpirePending marks pending requests as expired when TTL has elapsed.
func (s *Service) ExpirePending() ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expired := make([]Request, 0)

	for id, req := range data.Requests {
		if req.Status != StatusPending {
			continue
		}
		if req.ExpiresAt.IsZero() || req.ExpiresAt.After(now) {
			continue
		}

		req.Status = StatusExpired
		req.DecidedAt = now
		req.DecidedBy = "system"
		if strings.TrimSpace(req.DecisionNote) == "" {
			req.DecisionNote = "expired by ttl"
		}
		data.Requests[id] = req
		expired = append(expired, req)
	}

	if len(expired) > 0 {
		if err := s.store.Save(data); err != nil {
			return nil, err
		}
	}

	sortRequests(expired)
	return expired, nil
}

func (s *Service) createLocked(data *ledger, input CreateInput) (Request, error) {
	fingerprint := strings.TrimSpace(input.Fingerprint)
	if fingerprint == "" {
		return Request{}, fmt.Errorf("fingerprint is required")
	}

	now := s.now().UTC()
	ttl := input.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	request := Request{
		ID:          data.nextID(),
		Fingerprint: fingerprint,
		ActionKind:  strings.TrimSpace(input.ActionKind),
		TargetPath:  strings.TrimSpace(input.TargetPath),
		Reasons:     input.Reasons,
		Status:      StatusPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(ttl),
	}

	data.Requests[request.ID] = request

	if err := s.store.Save(*data); err != nil {
		return Request{}, err
	}
	return request, nil
}

func (s *Service) decide(id string, status RequestStatus, decision DecisionInput, defaultNote string) (Request, error) {
	requestID := strings.TrimSpace(id)
	if requestID == "" {
		return Request{}, fmt.Errorf("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load()
	if err != nil {
		return Request{}, err
	}

	now := s.now().UTC()
	decidedBy := strings.TrimSpace(decision.DecidedBy)
	if decidedBy == "" {
		decidedBy = "unknown"
	}
	decisionNote := strings.TrimSpace(decision.Note)
	if decisionNote == "" {
		decisionNote = defaultNote
	}

	req, ok := data.Requests[requestID]
	if !ok {
		return Request{}, fmt.Errorf("request not found: %s", requestID)
	}
	if req.Status != StatusPending {
		return Request{}, fmt.Errorf("request %s is not pending", requestID)
	}

	req.Status = status
	req.DecidedAt = now
	req.DecidedBy = decidedBy
	req.DecisionNote = decisionNote
	data.Requests[requestID] = req

	if err := s.store.Save(data); err != nil {
		return Request{}, err
	}
	return req, nil
}
