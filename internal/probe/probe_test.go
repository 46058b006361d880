package probe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kavrelis/preflight/internal/check"
)

func TestCheck_EscapeBlocksRegardlessOfExpectation(t *testing.T) {
	root := t.TempDir()
	for _, wantExists := range []bool{true, false} {
		r := Check(root, "../outside.txt", wantExists)
		if !r.Blocking() {
			t.Errorf("wantExists=%v: escape not blocked: %+v", wantExists, r)
		}
		if !strings.Contains(r.Message, "escapes project root") {
			t.Errorf("wantExists=%v: message = %q", wantExists, r.Message)
		}
	}
}

func TestCheck_DeepEscape(t *testing.T) {
	root := t.TempDir()
	r := Check(root, "src/../../etc/passwd", true)
	if !r.Blocking() {
		t.Fatalf("nested escape not blocked: %+v", r)
	}
}

func TestCheck_MissingTargetBlocksWhenExpected(t *testing.T) {
	root := t.TempDir()
	r := Check(root, "src/missing.ts", true)
	if !r.Blocking() {
		t.Fatalf("missing expected file not blocked: %+v", r)
	}
	if !strings.Contains(r.Message, "does not exist") {
		t.Fatalf("message = %q", r.Message)
	}
}

func TestCheck_MissingTargetPassesForCreate(t *testing.T) {
	root := t.TempDir()
	r := Check(root, "src/new.ts", false)
	if !r.Pass || r.Severity != check.SeverityInfo {
		t.Fatalf("create of new file should pass: %+v", r)
	}
}

func TestCheck_OverwriteWarnsButPasses(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "existing.ts")
	if err := os.WriteFile(path, []byte("export {};"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r := Check(root, "existing.ts", false)
	if !r.Pass {
		t.Fatalf("overwrite advisory must not fail the action: %+v", r)
	}
	if r.Severity != check.SeverityWarn {
		t.Fatalf("Severity = %q, want %q", r.Severity, check.SeverityWarn)
	}
}

func TestCheck_DirectoryWhereFileExpected(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	for _, wantExists := range []bool{true, false} {
		r := Check(root, "src", wantExists)
		if !r.Blocking() {
			t.Errorf("wantExists=%v: directory target not blocked: %+v", wantExists, r)
		}
	}
}

func TestCheck_ExistingFilePasses(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.ts"), []byte("export {};"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r := Check(root, "index.ts", true)
	if !r.Pass || r.Severity != check.SeverityInfo {
		t.Fatalf("existing file should pass: %+v", r)
	}
}

func TestResolve_RootItselfAllowed(t *testing.T) {
	root := t.TempDir()
	abs, err := Resolve(root, ".")
	if err != nil {
		t.Fatalf("Resolve(.) error = %v", err)
	}
	if abs != filepath.Clean(root) {
		t.Fatalf("Resolve(.) = %q, want %q", abs, filepath.Clean(root))
	}
}
