// Package metrics keeps lightweight counters about validation runs. The
// snapshot persists under the project state dir so the status command can
// report it without a daemon.
package metrics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const runtimeMetricsFileName = "runtime_metrics.json"

var latencyBucketUpperBoundsMs = []int64{
	10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000,
}

// RuntimeSnapshot contains aggregated metrics for validation runs.
// LatencyBuckets carries the per-bucket sample counts so the p95 proxy
// keeps accumulating across one-shot CLI invocations.
type RuntimeSnapshot struct {
	UpdatedAt      time.Time `json:"updated_at"`
	Runs           RunStats  `json:"runs"`
	LatencyBuckets []int64   `json:"latency_buckets,omitempty"`
}

// RunStats tracks validation run outcomes and latency.
type RunStats struct {
	Total             int64 `json:"total"`
	Blocked           int64 `json:"blocked"`
	ApprovalGated     int64 `json:"approval_gated"`
	Warned            int64 `json:"warned"`
	TotalLatencyMs    int64 `json:"total_latency_ms"`
	MaxLatencyMs      int64 `json:"max_latency_ms"`
	LastLatencyMs     int64 `json:"last_latency_ms"`
	P95ProxyLatencyMs int64 `json:"p95_proxy_latency_ms"`
}

// BlockRatio returns blocked/total in [0,1].
func (r RunStats) BlockRatio() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Blocked) / float64(r.Total)
}

// AvgLatencyMs returns average run latency in milliseconds.
func (r RunStats) AvgLatencyMs() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.TotalLatencyMs) / float64(r.Total)
}

// HasData reports whether any runs were recorded.
func (s RuntimeSnapshot) HasData() bool {
	return s.Runs.Total > 0
}

// RuntimeMetrics records and persists run metrics.
type RuntimeMetrics struct {
	path string

	mu      sync.Mutex
	snap    RuntimeSnapshot
	buckets []int64
}

// NewRuntimeMetrics creates a recorder rooted at
// <root>/.preflight/runtime_metrics.json, seeded from the persisted
// snapshot so one-shot invocations keep accumulating instead of
// resetting the counters. An unreadable snapshot starts fresh.
func NewRuntimeMetrics(root string) *RuntimeMetrics {
	m := &RuntimeMetrics{
		path:    runtimeMetricsPath(root),
		buckets: make([]int64, len(latencyBucketUpperBoundsMs)+1),
	}
	snap, err := ReadRuntimeSnapshot(root)
	if err != nil {
		slog.Warn("runtime metrics unreadable, starting fresh", "error", err)
		return m
	}
	m.snap = snap
	for i, count := range snap.LatencyBuckets {
		if i < len(m.buckets) {
			m.buckets[i] = count
		}
	}
	return m
}

// Snapshot returns the latest in-memory snapshot.
func (m *RuntimeMetrics) Snapshot() RuntimeSnapshot {
	if m == nil {
		return RuntimeSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snap
	snap.LatencyBuckets = append([]int64(nil), m.snap.LatencyBuckets...)
	return snap
}

// RecordRun updates run metrics and persists the snapshot. decision is the
// aggregate outcome of the run: pass, warn, approval_required or block.
func (m *RuntimeMetrics) RecordRun(duration time.Duration, decision string) (RuntimeSnapshot, error) {
	if m == nil {
		return RuntimeSnapshot{}, nil
	}

	now := time.Now().UTC()
	latencyMs := duration.Milliseconds()
	if latencyMs < 0 {
		latencyMs = 0
	}

	m.mu.Lock()
	m.snap.UpdatedAt = now
	m.snap.Runs.Total++
	m.snap.Runs.TotalLatencyMs += latencyMs
	m.snap.Runs.LastLatencyMs = latencyMs
	if latencyMs > m.snap.Runs.MaxLatencyMs {
		m.snap.Runs.MaxLatencyMs = latencyMs
	}
	switch decision {
	case "block":
		m.snap.Runs.Blocked++
	case "approval_required":
		m.snap.Runs.ApprovalGated++
	case "warn":
		m.snap.Runs.Warned++
	}

	m.buckets[latencyBucketIndex(latencyMs)]++
	m.snap.Runs.P95ProxyLatencyMs = p95ProxyFromBuckets(m.buckets, m.snap.Runs.Total)
	m.snap.LatencyBuckets = append([]int64(nil), m.buckets...)

	snapshot := m.snap
	m.mu.Unlock()

	return snapshot, persistRuntimeSnapshot(m.path, snapshot)
}

// ReadRuntimeSnapshot reads the persisted snapshot from project state.
// If no file exists yet, it returns a zero-value snapshot and nil error.
func ReadRuntimeSnapshot(root string) (RuntimeSnapshot, error) {
	path := runtimeMetricsPath(root)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RuntimeSnapshot{}, nil
		}
		return RuntimeSnapshot{}, fmt.Errorf("read runtime metrics: %w", err)
	}

	var snap RuntimeSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return RuntimeSnapshot{}, fmt.Errorf("decode runtime metrics: %w", err)
	}
	return snap, nil
}

func runtimeMetricsPath(root string) string {
	return filepath.Join(root, ".preflight", runtimeMetricsFileName)
}

func persistRuntimeSnapshot(path string, snapshot RuntimeSnapshot) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create runtime metrics dir: %w", err)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode runtime metrics: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, payload, 0o644); err != nil {
		return fmt.Errorf("write runtime metrics temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename runtime metrics file: %w", err)
	}
	return nil
}

func latencyBucketIndex(latencyMs int64) int {
	for i, upper := range latencyBucketUpperBoundsMs {
		if latencyMs <= upper {
			return i
		}
	}
	return len(latencyBucketUpperBoundsMs)
}

func p95ProxyFromBuckets(buckets []int64, total int64) int64 {
	if total <= 0 {
		return 0
	}
	target := int64(float64(total) * 0.95)
	if target <= 0 {
		target = 1
	}

	var cumulative int64
	for i, count := range buckets {
		cumulative += count
		if cumulative < target {
			continue
		}
		if i >= len(latencyBucketUpperBoundsMs) {
			return latencyBucketUpperBoundsMs[len(latencyBucketUpperBoundsMs)-1]
		}
		return latencyBucketUpperBoundsMs[i]
	}
	return latencyBucketUpperBoundsMs[len(latencyBucketUpperBoundsMs)-1]
}
