package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/kavrelis/preflight/internal/approval"
	"github.com/kavrelis/preflight/internal/metrics"
)

func TestStatus_ShowsSections(t *testing.T) {
	root := prepareProject(t)
	writeProjectFile(t, root, "preflight.policy.json", showcasePolicy)

	svc := approval.NewService(root)
	if _, err := svc.Create(approval.CreateInput{
		Fingerprint: "fp-status",
		ActionKind:  "create",
		TargetPath:  "src/payments/checkout.ts",
	}); err != nil {
		t.Fatalf("Create approval: %v", err)
	}

	output := captureOutput(t, func() {
		if err := runStatus(nil, nil); err != nil {
			t.Errorf("runStatus: %v", err)
		}
	})

	for _, want := range []string{
		"=== Preflight Status ===",
		"preflight.policy.json",
		"Status: OK",
		"file_existence: enabled",
		"Pending: 1",
		"no runs recorded yet",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in status output, got: %s", want, output)
		}
	}
}

func TestStatus_ReportsRunMetrics(t *testing.T) {
	root := prepareProject(t)
	recorder := metrics.NewRuntimeMetrics(root)
	if _, err := recorder.RecordRun(35*time.Millisecond, "block"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if _, err := recorder.RecordRun(10*time.Millisecond, "pass"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	output := captureOutput(t, func() {
		if err := runStatus(nil, nil); err != nil {
			t.Errorf("runStatus: %v", err)
		}
	})
	if !strings.Contains(output, "Total: 2 (blocked=1 gated=0 warned=0)") {
		t.Fatalf("expected run totals in status output, got: %s", output)
	}
	if !strings.Contains(output, "max=35ms") {
		t.Fatalf("expected max latency in status output, got: %s", output)
	}
}

func TestStatus_NoPolicyConfigured(t *testing.T) {
	_ = prepareProject(t)

	output := captureOutput(t, func() {
		if err := runStatus(nil, nil); err != nil {
			t.Errorf("runStatus: %v", err)
		}
	})
	if !strings.Contains(output, "none found") {
		t.Fatalf("expected none-found policy status, got: %s", output)
	}
}
