package policy

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/kavrelis/preflight/internal/action"
	"github.com/kavrelis/preflight/internal/check"
)

// impurityMarkers are the lexical hints that a module reaches outside
// itself; used for directories declared pure.
var impurityMarkers = []string{
	"console.", "fetch(", "Date.now", "Math.random",
	"localStorage", "sessionStorage", "document.", "window.", "process.env",
}

// Evaluation is the raw outcome of applying a policy to one action, before
// classification into a check result. Approval is tracked independently of
// violations: an action can be policy-clean and still approval-gated.
type Evaluation struct {
	Violations       []check.Violation
	RequiresApproval bool
	ApprovalReasons  []string
}

// Evaluate applies doc to a. It is pure: no filesystem access, no clock,
// and it always returns — a rule that cannot be interpreted simply does
// not match.
func Evaluate(a action.Action, doc *Document) Evaluation {
	var ev Evaluation
	if doc == nil {
		return ev
	}
	target := normalizePath(a.TargetPath)

	ev.Violations = append(ev.Violations, protectedViolations(a, target, doc)...)
	ev.Violations = append(ev.Violations, boundaryViolations(a, target, doc)...)
	ev.Violations = append(ev.Violations, forbiddenPackageViolations(a, doc)...)
	ev.Violations = append(ev.Violations, forbiddenPatternViolations(a, target, doc)...)
	ev.Violations = append(ev.Violations, ceilingViolations(a, target, doc)...)
	ev.Violations = append(ev.Violations, namingViolations(a, target, doc)...)
	ev.Violations = append(ev.Violations, exportViolations(a, target, doc)...)
	ev.Violations = append(ev.Violations, purityViolations(a, target, doc)...)

	for _, rule := range doc.Modifications.RequireApproval {
		if rule.Pattern == "" || target == "" {
			continue
		}
		if matchPathRule(rule.Pattern, target) {
			ev.RequiresApproval = true
			reason := rule.Reason
			if reason == "" {
				reason = fmt.Sprintf("%s matches %s", target, rule.Pattern)
			}
			ev.ApprovalReasons = append(ev.ApprovalReasons, reason)
		}
	}
	return ev
}

func errViolation(msg, rule string) check.Violation {
	return check.Violation{Severity: check.ViolationError, Message: msg, Rule: rule}
}

func warnViolation(msg, rule string) check.Violation {
	return check.Violation{Severity: check.ViolationWarning, Message: msg, Rule: rule}
}

func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func countLines(content string) int {
	return strings.Count(content, "\n") + 1
}

// protectedViolations covers the target path, and the source path too for
// moves and deletes: moving a protected file away is as destructive as
// editing it.
func protectedViolations(a action.Action, target string, doc *Document) []check.Violation {
	var out []check.Violation
	paths := []string{target}
	if (a.Kind == action.Move || a.Kind == action.Delete) && a.SourcePath != "" {
		paths = append(paths, normalizePath(a.SourcePath))
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		for _, pf := range doc.Modifications.ProtectedFiles {
			if matchGlob(pf, p) {
				out = append(out, errViolation(
					fmt.Sprintf("%s is a protected file", p), "modifications.protectedFiles"))
				break
			}
		}
		for _, pd := range doc.Modifications.ProtectedDirectories {
			if underDirectoryPattern(pd, p) {
				out = append(out, errViolation(
					fmt.Sprintf("%s is under protected directory %s", p, pd), "modifications.protectedDirectories"))
				break
			}
		}
	}
	return out
}

// boundaryViolations applies every boundary rule whose from glob matches
// the target. Relative specifiers are matched both raw and normalized to
// the project path they point at. Dependencies are held against
// cannotImport; the canImport allow-list constrains imports only.
func boundaryViolations(a action.Action, target string, doc *Document) []check.Violation {
	if target == "" {
		return nil
	}
	var out []check.Violation
	for _, rule := range doc.Boundaries {
		if !matchGlob(rule.From, target) {
			continue
		}
		label := rule.Description
		if label == "" {
			label = rule.From
		}
		for _, imp := range a.Imports {
			forms := importForms(imp, target)
			if _, hit := matchAnyGlob(rule.CannotImport, forms); hit {
				out = append(out, errViolation(
					fmt.Sprintf("%s must not import %q (%s)", target, imp, label), "boundaries"))
				continue
			}
			if len(rule.CanImport) > 0 {
				if _, hit := matchAnyGlob(rule.CanImport, forms); !hit {
					out = append(out, errViolation(
						fmt.Sprintf("%s imports %q which is outside the allowed imports (%s)", target, imp, label), "boundaries"))
				}
			}
		}
		for _, dep := range a.Dependencies {
			if _, hit := matchAnyGlob(rule.CannotImport, []string{dep}); hit {
				out = append(out, errViolation(
					fmt.Sprintf("%s must not depend on %q (%s)", target, dep, label), "boundaries"))
			}
		}
	}
	return out
}

func forbiddenPackageViolations(a action.Action, doc *Document) []check.Violation {
	var out []check.Violation
	for _, dep := range a.Dependencies {
		for _, banned := range doc.TechStack.ForbiddenPackages {
			if matchGlob(banned, dep) {
				out = append(out, errViolation(
					fmt.Sprintf("dependency %q is forbidden by the tech stack", dep), "techStack.forbiddenPackages"))
				break
			}
		}
	}
	return out
}

func forbiddenPatternViolations(a action.Action, target string, doc *Document) []check.Violation {
	if a.Content == "" {
		return nil
	}
	var out []check.Violation
	for _, pat := range doc.CodeQuality.ForbiddenPatterns {
		if pat != "" && strings.Contains(a.Content, pat) {
			out = append(out, errViolation(
				fmt.Sprintf("content contains forbidden pattern %q", pat), "codeQuality.forbiddenPatterns"))
		}
	}
	if dir, rule := doc.DirectoryFor(target); rule != nil {
		for _, pat := range rule.ForbiddenPatterns {
			if pat != "" && strings.Contains(a.Content, pat) {
				out = append(out, errViolation(
					fmt.Sprintf("content contains pattern %q forbidden under %s", pat, dir),
					fmt.Sprintf("directories.%s.forbiddenPatterns", dir)))
			}
		}
	}
	return out
}

// ceilingViolations is best-effort and line-count based; the directory
// ceiling and the project-wide ceiling may both fire for one file.
func ceilingViolations(a action.Action, target string, doc *Document) []check.Violation {
	if a.Content == "" {
		return nil
	}
	lines := countLines(a.Content)
	var out []check.Violation
	if dir, rule := doc.DirectoryFor(target); rule != nil && rule.MaxLines > 0 && lines > rule.MaxLines {
		out = append(out, warnViolation(
			fmt.Sprintf("%s has %d lines, over the %d-line ceiling for %s", target, lines, rule.MaxLines, dir),
			fmt.Sprintf("directories.%s.maxLines", dir)))
	}
	if ceiling := doc.CodeQuality.MaxFileLines; ceiling > 0 && lines > ceiling {
		out = append(out, warnViolation(
			fmt.Sprintf("%s has %d lines, over the project ceiling of %d", target, lines, ceiling),
			"codeQuality.maxFileLines"))
	}
	return out
}

// namingViolations fires for creates and moves only: those are the moments
// a file name is chosen.
func namingViolations(a action.Action, target string, doc *Document) []check.Violation {
	if a.Kind != action.Create && a.Kind != action.Move {
		return nil
	}
	if target == "" || len(doc.Naming) == 0 {
		return nil
	}
	segments := strings.Split(path.Dir(target), "/")
	base := path.Base(target)

	kinds := make([]string, 0, len(doc.Naming))
	for kind := range doc.Naming {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var out []check.Violation
	for _, kind := range kinds {
		if !containsSegment(segments, kind) {
			continue
		}
		re, err := regexp.Compile(doc.Naming[kind])
		if err != nil {
			continue
		}
		if !re.MatchString(base) {
			out = append(out, warnViolation(
				fmt.Sprintf("%s does not match the %s naming convention %q", base, kind, doc.Naming[kind]),
				"naming."+kind))
		}
	}
	return out
}

func containsSegment(segments []string, want string) bool {
	for _, s := range segments {
		if s == want {
			return true
		}
	}
	return false
}

func exportViolations(a action.Action, target string, doc *Document) []check.Violation {
	if a.Content == "" || (a.Kind != action.Create && a.Kind != action.Edit) {
		return nil
	}
	dir, rule := doc.DirectoryFor(target)
	if rule == nil || len(rule.RequiredExports) == 0 {
		return nil
	}
	var out []check.Violation
	for _, name := range rule.RequiredExports {
		re := regexp.MustCompile(`(?m)^\s*export\b[^\n]*\b` + regexp.QuoteMeta(name) + `\b`)
		if !re.MatchString(a.Content) {
			out = append(out, warnViolation(
				fmt.Sprintf("%s is missing required export %q for %s", target, name, dir),
				fmt.Sprintf("directories.%s.requiredExports", dir)))
		}
	}
	return out
}

func purityViolations(a action.Action, target string, doc *Document) []check.Violation {
	if a.Content == "" {
		return nil
	}
	dir, rule := doc.DirectoryFor(target)
	if rule == nil || !rule.Pure {
		return nil
	}
	var found []string
	for _, marker := range impurityMarkers {
		if strings.Contains(a.Content, marker) {
			found = append(found, marker)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return []check.Violation{warnViolation(
		fmt.Sprintf("%s is declared pure but content references %s", dir, strings.Join(found, ", ")),
		fmt.Sprintf("directories.%s.pure", dir))}
}
