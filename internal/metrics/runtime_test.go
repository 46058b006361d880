package metrics

import (
	"testing"
	"time"
)

func TestRuntimeMetrics_AggregatesRunStats(t *testing.T) {
	workspace := t.TempDir()
	recorder := NewRuntimeMetrics(workspace)

	snap, err := recorder.RecordRun(120*time.Millisecond, "pass")
	if err != nil {
		t.Fatalf("RecordRun pass error: %v", err)
	}
	if snap.Runs.Total != 1 || snap.Runs.Blocked != 0 || snap.Runs.ApprovalGated != 0 {
		t.Fatalf("unexpected first run snapshot: %+v", snap.Runs)
	}

	_, _ = recorder.RecordRun(250*time.Millisecond, "block")
	_, _ = recorder.RecordRun(2*time.Second, "approval_required")
	snap, _ = recorder.RecordRun(1500*time.Millisecond, "warn")

	if snap.Runs.Total != 4 {
		t.Fatalf("expected 4 runs, got %d", snap.Runs.Total)
	}
	if snap.Runs.Blocked != 1 || snap.Runs.ApprovalGated != 1 || snap.Runs.Warned != 1 {
		t.Fatalf("unexpected decision counters: %+v", snap.Runs)
	}
	if got := snap.Runs.BlockRatio(); got < 0.24 || got > 0.26 {
		t.Fatalf("expected block ratio about 0.25, got %.4f", got)
	}
	if snap.Runs.MaxLatencyMs != 2000 {
		t.Fatalf("expected max latency 2000ms, got %d", snap.Runs.MaxLatencyMs)
	}
	if snap.Runs.LastLatencyMs != 1500 {
		t.Fatalf("expected last latency 1500ms, got %d", snap.Runs.LastLatencyMs)
	}
	if got := snap.Runs.AvgLatencyMs(); got < 900 || got > 1000 {
		t.Fatalf("expected average latency about 967ms, got %.2f", got)
	}
	if snap.Runs.P95ProxyLatencyMs <= 0 {
		t.Fatalf("expected p95 proxy latency > 0, got %d", snap.Runs.P95ProxyLatencyMs)
	}
	if !snap.HasData() {
		t.Fatal("expected snapshot to report data after recorded runs")
	}
}

func TestRuntimeMetrics_ReadRuntimeSnapshot(t *testing.T) {
	workspace := t.TempDir()
	recorder := NewRuntimeMetrics(workspace)

	if _, err := recorder.RecordRun(99*time.Millisecond, "pass"); err != nil {
		t.Fatalf("RecordRun pass error: %v", err)
	}
	if _, err := recorder.RecordRun(40*time.Millisecond, "block"); err != nil {
		t.Fatalf("RecordRun block error: %v", err)
	}

	snap, err := ReadRuntimeSnapshot(workspace)
	if err != nil {
		t.Fatalf("ReadRuntimeSnapshot error: %v", err)
	}
	if snap.Runs.Total != 2 || snap.Runs.Blocked != 1 {
		t.Fatalf("unexpected loaded snapshot: %+v", snap.Runs)
	}
	if snap.UpdatedAt.IsZero() {
		t.Fatal("expected persisted snapshot to carry an update time")
	}
}

func TestRuntimeMetrics_AccumulatesAcrossInstances(t *testing.T) {
	workspace := t.TempDir()

	first := NewRuntimeMetrics(workspace)
	if _, err := first.RecordRun(40*time.Millisecond, "block"); err != nil {
		t.Fatalf("RecordRun block error: %v", err)
	}

	// a second recorder over the same root, as each CLI invocation creates
	second := NewRuntimeMetrics(workspace)
	snap, err := second.RecordRun(10*time.Millisecond, "pass")
	if err != nil {
		t.Fatalf("RecordRun pass error: %v", err)
	}
	if snap.Runs.Total != 2 || snap.Runs.Blocked != 1 {
		t.Fatalf("second instance did not seed from the persisted snapshot: %+v", snap.Runs)
	}

	persisted, err := ReadRuntimeSnapshot(workspace)
	if err != nil {
		t.Fatalf("ReadRuntimeSnapshot error: %v", err)
	}
	if persisted.Runs.Total != 2 || persisted.Runs.Blocked != 1 {
		t.Fatalf("persisted counters reset between instances: %+v", persisted.Runs)
	}
	var samples int64
	for _, count := range persisted.LatencyBuckets {
		samples += count
	}
	if samples != 2 {
		t.Fatalf("expected 2 persisted latency samples, got %d", samples)
	}

	if got := NewRuntimeMetrics(workspace).Snapshot(); got.Runs.Total != 2 {
		t.Fatalf("fresh recorder snapshot = %+v, want the accumulated totals", got.Runs)
	}
}

func TestReadRuntimeSnapshot_MissingFileReturnsZero(t *testing.T) {
	snap, err := ReadRuntimeSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("ReadRuntimeSnapshot on empty workspace error: %v", err)
	}
	if snap.HasData() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}
