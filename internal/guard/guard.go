// Package guard orchestrates the validation of proposed agent actions. A
// Guard owns the project configuration, dispatches the enabled check
// engines per action, and aggregates their results deterministically.
package guard

import (
	"sync"
	"time"

	"github.com/kavrelis/preflight/internal/action"
	"github.com/kavrelis/preflight/internal/check"
	"github.com/kavrelis/preflight/internal/imports"
	"github.com/kavrelis/preflight/internal/policy"
	"github.com/kavrelis/preflight/internal/probe"
	"github.com/kavrelis/preflight/internal/syntax"
)

// Toggles enables or disables individual check engines.
type Toggles struct {
	FileExistence    bool `json:"file_existence" mapstructure:"file_existence"`
	ImportValidity   bool `json:"import_validity" mapstructure:"import_validity"`
	SyntaxValidity   bool `json:"syntax_validity" mapstructure:"syntax_validity"`
	PolicyCompliance bool `json:"policy_compliance" mapstructure:"policy_compliance"`
}

// AllChecks returns toggles with every engine enabled.
func AllChecks() Toggles {
	return Toggles{
		FileExistence:    true,
		ImportValidity:   true,
		SyntaxValidity:   true,
		PolicyCompliance: true,
	}
}

// Config is the per-project guard configuration. ProjectRoot must be
// absolute. Policy may be nil, which disables policy compliance.
type Config struct {
	ProjectRoot string
	Policy      *policy.Document
	Checks      Toggles
}

// Guard validates proposed actions. It is safe for concurrent use: every
// validation snapshots the configuration at entry, so SetCheckEnabled and
// UpdatePolicy never affect validations already in flight.
type Guard struct {
	mu           sync.RWMutex
	cfg          Config
	listeners    map[int64]Listener
	nextListener int64
}

// New builds a Guard over cfg.
func New(cfg Config) *Guard {
	return &Guard{cfg: cfg, listeners: make(map[int64]Listener)}
}

func (g *Guard) snapshot() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cfg
}

// SetCheckEnabled flips one engine for subsequent validations.
func (g *Guard) SetCheckEnabled(kind check.Kind, enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch kind {
	case check.KindFileExistence:
		g.cfg.Checks.FileExistence = enabled
	case check.KindImportValidity:
		g.cfg.Checks.ImportValidity = enabled
	case check.KindSyntaxValidity:
		g.cfg.Checks.SyntaxValidity = enabled
	case check.KindPolicyCompliance:
		g.cfg.Checks.PolicyCompliance = enabled
	}
}

// UpdatePolicy swaps the policy document wholesale for subsequent
// validations.
func (g *Guard) UpdatePolicy(doc *policy.Document) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg.Policy = doc
}

// Validate runs every enabled check over every action in out and merges
// the outcomes into one result. Actions validate independently and
// concurrently; the merged results keep action order, each action's
// results in the fixed check-kind order. Subscribed listeners are
// notified once per call.
func (g *Guard) Validate(out action.Output) Result {
	start := time.Now()
	cfg := g.snapshot()

	perAction := make([][]check.Result, len(out.Actions))
	var wg sync.WaitGroup
	for i, a := range out.Actions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			perAction[i] = runChecks(cfg, a)
		}()
	}
	wg.Wait()

	var all []check.Result
	for _, rs := range perAction {
		all = append(all, rs...)
	}
	res := Aggregate(all)
	g.notify(out, res, time.Since(start))
	return res
}

// ValidateAction validates a single action.
func (g *Guard) ValidateAction(a action.Action) Result {
	return g.Validate(action.Output{Actions: []action.Action{a}})
}

// ValidateBatch validates each action as its own run: independent,
// concurrent, results in input order. Listeners see one notification per
// action.
func (g *Guard) ValidateBatch(actions []action.Action) []Result {
	cfg := g.snapshot()

	results := make([]Result, len(actions))
	var wg sync.WaitGroup
	for i, a := range actions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			res := Aggregate(runChecks(cfg, a))
			g.notify(action.Output{Actions: []action.Action{a}}, res, time.Since(start))
			results[i] = res
		}()
	}
	wg.Wait()
	return results
}

// ValidatePath probes one path outside the full-action flow.
func (g *Guard) ValidatePath(relPath string, shouldExist bool) check.Result {
	cfg := g.snapshot()
	return probe.Check(cfg.ProjectRoot, relPath, shouldExist)
}

// ValidateContent scans content outside the full-action flow.
func (g *Guard) ValidateContent(content, language string) check.Result {
	return syntax.Check(content, language, "")
}

// runChecks dispatches the enabled engines for one action. Engines run
// concurrently into kind-indexed slots; the flattened output is therefore
// in kind order no matter which engine finishes first.
func runChecks(cfg Config, a action.Action) []check.Result {
	slots := make([][]check.Result, len(check.KindOrder()))
	var wg sync.WaitGroup
	run := func(slot int, fn func() []check.Result) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots[slot] = fn()
		}()
	}

	if cfg.Checks.FileExistence && a.TargetPath != "" {
		run(0, func() []check.Result { return existenceResults(cfg, a) })
	}
	if cfg.Checks.ImportValidity && a.Content != "" && a.TargetPath != "" {
		run(1, func() []check.Result {
			return imports.CheckAll(a.Content, a.TargetPath, cfg.ProjectRoot, a.Imports)
		})
	}
	if cfg.Checks.SyntaxValidity && a.Content != "" && a.Language != "" {
		run(2, func() []check.Result {
			return []check.Result{syntax.Check(a.Content, a.Language, a.TargetPath)}
		})
	}
	if cfg.Checks.PolicyCompliance && cfg.Policy != nil {
		run(3, func() []check.Result {
			return []check.Result{policy.Comply(a, cfg.Policy)}
		})
	}
	wg.Wait()

	var out []check.Result
	for _, rs := range slots {
		out = append(out, rs...)
	}
	return out
}

// existenceResults probes the target, and for moves the source as well: a
// move from a path that is not there is a hallucination.
func existenceResults(cfg Config, a action.Action) []check.Result {
	wantExists := a.Kind == action.Read || a.Kind == action.Edit || a.Kind == action.Delete
	results := []check.Result{probe.Check(cfg.ProjectRoot, a.TargetPath, wantExists)}
	if a.Kind == action.Move && a.SourcePath != "" {
		results = append(results, probe.Check(cfg.ProjectRoot, a.SourcePath, true))
	}
	return results
}
