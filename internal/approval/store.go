package approval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

const ledgerVersion = 1

// ledger is the persisted approval state of one project: every request
// ever filed, keyed by its id. Decided and expired requests stay in the
// ledger so a granted fingerprint keeps releasing identical retries.
type ledger struct {
	Version  int                `json:"version"`
	Requests map[string]Request `json:"requests"`
}

func newLedger() ledger {
	return ledger{Version: ledgerVersion, Requests: map[string]Request{}}
}

// nextID returns the first id past the highest numeric id in use.
func (l ledger) nextID() string {
	highest := int64(0)
	for id := range l.Requests {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return strconv.FormatInt(highest+1, 10)
}

// Store persists the approval ledger under
// <root>/.preflight/approvals.json.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a ledger store rooted at the project.
func NewStore(root string) *Store {
	return &Store{path: filepath.Join(root, ".preflight", "approvals.json")}
}

// Load reads the ledger from disk. A missing file is an empty ledger.
func (s *Store) Load() (ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newLedger(), nil
		}
		return ledger{}, fmt.Errorf("read approval ledger: %w", err)
	}

	var l ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return ledger{}, fmt.Errorf("parse approval ledger: %w", err)
	}
	if l.Version <= 0 {
		l.Version = ledgerVersion
	}
	if l.Requests == nil {
		l.Requests = map[string]Request{}
	}
	return l, nil
}

// Save writes the ledger atomically: a temp file in the same directory,
// renamed over the previous one.
func (s *Store) Save(l ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal approval ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create approval ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "approvals-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp approval ledger: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp approval ledger: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp approval ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp approval ledger: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace approval ledger: %w", err)
	}
	return nil
}
