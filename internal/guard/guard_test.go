package guard

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kavrelis/preflight/internal/action"
	"github.com/kavrelis/preflight/internal/check"
	"github.com/kavrelis/preflight/internal/policy"
)

func newRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWrite(t, root, "package.json", `{"dependencies": {"react": "^18.0.0"}}`)
	mustWrite(t, root, "src/index.ts", "export {};")
	return root
}

func mustWrite(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestValidate_CleanCreatePasses(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})
	res := g.ValidateAction(action.Action{
		Kind:       action.Create,
		TargetPath: "src/utils/sum.ts",
		Content:    "import path from 'node:path';\nexport const sum = (a: number, b: number) => a + b;",
		Language:   "typescript",
	})
	if !res.Pass {
		t.Fatalf("clean create failed: %+v", res.BlockingReasons)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestValidate_ProtectedDirectoryScenario(t *testing.T) {
	doc := &policy.Document{
		Modifications: policy.ModificationRules{ProtectedDirectories: []string{"src/secrets"}},
	}
	g := New(Config{ProjectRoot: newRoot(t), Policy: doc, Checks: AllChecks()})

	res := g.ValidateAction(action.Action{
		Kind:       action.Create,
		TargetPath: "src/secrets/key.ts",
		Content:    "export const x=1;",
	})
	if res.Pass {
		t.Fatal("protected-path create must fail validation")
	}
	found := false
	for _, reason := range res.BlockingReasons {
		if strings.Contains(reason, "protected") {
			found = true
		}
	}
	if !found {
		t.Fatalf("BlockingReasons = %v, want a protected-path message", res.BlockingReasons)
	}
}

func TestValidate_WarnOnlyPassesWithWarnings(t *testing.T) {
	root := newRoot(t)
	g := New(Config{ProjectRoot: root, Checks: AllChecks()})

	// creating over an existing file is an advisory, not a failure
	res := g.ValidateAction(action.Action{Kind: action.Create, TargetPath: "src/index.ts"})
	if !res.Pass {
		t.Fatalf("overwrite advisory failed the action: %+v", res.BlockingReasons)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a non-empty warnings list")
	}
}

func TestValidate_PassFalseIffBlockExists(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})

	res := g.ValidateAction(action.Action{Kind: action.Edit, TargetPath: "src/missing.ts", Content: "export {};", Language: "ts"})
	if res.Pass {
		t.Fatal("edit of a missing file must fail")
	}
	hasBlock := false
	for _, r := range res.Results {
		if r.Blocking() {
			hasBlock = true
		}
	}
	if !hasBlock {
		t.Fatal("failing result carries no blocking check")
	}
}

func TestValidate_ResultsInFixedKindOrder(t *testing.T) {
	doc := &policy.Document{
		Modifications: policy.ModificationRules{ProtectedDirectories: []string{"src/secrets"}},
	}
	g := New(Config{ProjectRoot: newRoot(t), Policy: doc, Checks: AllChecks()})

	// fails existence, imports, syntax and policy at once
	res := g.ValidateAction(action.Action{
		Kind:       action.Edit,
		TargetPath: "src/secrets/app.ts",
		Content:    "import x from './nowhere';\nfunction f( {",
		Language:   "typescript",
	})
	order := make([]check.Kind, 0, len(res.Results))
	for _, r := range res.Results {
		order = append(order, r.Kind)
	}
	want := []check.Kind{
		check.KindFileExistence,
		check.KindImportValidity,
		check.KindSyntaxValidity,
		check.KindPolicyCompliance,
	}
	if len(order) != len(want) {
		t.Fatalf("results = %v, want one per kind", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("results out of kind order: %v", order)
		}
	}
}

func TestValidate_DispatchSkipsWithoutInputs(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})

	// no content, no language, no policy: only the probe may run
	res := g.ValidateAction(action.Action{Kind: action.Delete, TargetPath: "src/index.ts"})
	if len(res.Results) != 1 || res.Results[0].Kind != check.KindFileExistence {
		t.Fatalf("results = %+v, want the probe alone", res.Results)
	}
	if !res.Pass {
		t.Fatalf("delete of an existing file should pass: %+v", res.BlockingReasons)
	}
}

func TestValidate_MoveProbesSource(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})

	res := g.ValidateAction(action.Action{
		Kind:       action.Move,
		SourcePath: "src/ghost.ts",
		TargetPath: "src/renamed.ts",
	})
	if res.Pass {
		t.Fatal("move of a missing source must fail")
	}
	if len(res.Results) != 2 {
		t.Fatalf("results = %+v, want target + source probes", res.Results)
	}
}

func TestValidate_ApprovalGateIsVisibleButNotBlocking(t *testing.T) {
	doc := &policy.Document{
		Modifications: policy.ModificationRules{
			RequireApproval: []policy.ApprovalRule{{Pattern: "src/payments/**", Reason: "touches money"}},
		},
	}
	g := New(Config{ProjectRoot: newRoot(t), Policy: doc, Checks: AllChecks()})

	res := g.ValidateAction(action.Action{Kind: action.Create, TargetPath: "src/payments/checkout.ts"})
	if !res.Pass {
		t.Fatalf("gated action must not hard-block: %+v", res.BlockingReasons)
	}
	if !res.RequiresApproval() {
		t.Fatal("approval gate not visible on the aggregate")
	}
	if got := res.ApprovalReasons(); len(got) != 1 || got[0] != "touches money" {
		t.Fatalf("ApprovalReasons() = %v", got)
	}
	if res.Decision() != "approval_required" {
		t.Fatalf("Decision() = %q, want approval_required", res.Decision())
	}
}

func TestSetCheckEnabled_AffectsSubsequentCallsOnly(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})
	a := action.Action{Kind: action.Edit, TargetPath: "src/missing.ts"}

	if res := g.ValidateAction(a); res.Pass {
		t.Fatal("edit of missing file passed with the probe enabled")
	}
	g.SetCheckEnabled(check.KindFileExistence, false)
	if res := g.ValidateAction(a); !res.Pass {
		t.Fatalf("probe still ran after being disabled: %+v", res.BlockingReasons)
	}
}

func TestUpdatePolicy_SwapsWholesale(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})
	a := action.Action{Kind: action.Create, TargetPath: "src/secrets/key.ts"}

	if res := g.ValidateAction(a); !res.Pass {
		t.Fatalf("no policy configured, action should pass: %+v", res.BlockingReasons)
	}
	g.UpdatePolicy(&policy.Document{
		Modifications: policy.ModificationRules{ProtectedDirectories: []string{"src/secrets"}},
	})
	if res := g.ValidateAction(a); res.Pass {
		t.Fatal("new policy not applied to subsequent validation")
	}
}

func TestValidate_BatchMergesInActionOrder(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})
	out := action.Output{Actions: []action.Action{
		{Kind: action.Create, TargetPath: "src/a.ts"},
		{Kind: action.Edit, TargetPath: "src/missing.ts"},
	}}
	res := g.Validate(out)
	if res.Pass {
		t.Fatal("batch with a blocked action must fail")
	}
	if len(res.Results) != 2 {
		t.Fatalf("results = %+v, want one probe per action", res.Results)
	}
	if res.Results[0].Blocking() || !res.Results[1].Blocking() {
		t.Fatalf("batch results not in input order: %+v", res.Results)
	}
}

func TestValidateBatch_IndependentRunsInInputOrder(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})

	var mu sync.Mutex
	notified := 0
	g.Subscribe(func(Notification) {
		mu.Lock()
		defer mu.Unlock()
		notified++
	})

	results := g.ValidateBatch([]action.Action{
		{Kind: action.Create, TargetPath: "src/a.ts"},
		{Kind: action.Edit, TargetPath: "src/missing.ts"},
		{Kind: action.Delete, TargetPath: "src/index.ts"},
	})
	if len(results) != 3 {
		t.Fatalf("ValidateBatch() returned %d results, want 3", len(results))
	}
	if !results[0].Pass || results[1].Pass || !results[2].Pass {
		t.Fatalf("per-action outcomes out of input order: %+v", results)
	}
	mu.Lock()
	defer mu.Unlock()
	if notified != 3 {
		t.Fatalf("listener saw %d notifications, want one per action", notified)
	}
}

func TestSubscribe_ListenersSeeEveryValidation(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})

	var mu sync.Mutex
	var seen []Notification
	id := g.Subscribe(func(n Notification) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
	})

	g.ValidateAction(action.Action{Kind: action.Create, TargetPath: "src/new.ts"})
	mu.Lock()
	if len(seen) != 1 {
		mu.Unlock()
		t.Fatalf("listener saw %d notifications, want 1", len(seen))
	}
	if seen[0].RunID == "" {
		mu.Unlock()
		t.Fatal("notification missing run id")
	}
	mu.Unlock()

	g.Unsubscribe(id)
	g.ValidateAction(action.Action{Kind: action.Create, TargetPath: "src/new2.ts"})
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Fatalf("unsubscribed listener still notified: %d", len(seen))
	}
}

func TestValidatePath_EscapeBlocks(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})
	r := g.ValidatePath("../outside", false)
	if !r.Blocking() {
		t.Fatalf("escape not blocked: %+v", r)
	}
}

func TestValidateContent_AdHocScan(t *testing.T) {
	g := New(Config{ProjectRoot: newRoot(t), Checks: AllChecks()})
	if r := g.ValidateContent("const x = (1;", "js"); !r.Blocking() {
		t.Fatalf("defective content not blocked: %+v", r)
	}
	if r := g.ValidateContent("const x = 1;", "js"); !r.Pass {
		t.Fatalf("clean content blocked: %+v", r)
	}
}
