// Package policy interprets the declarative project policy: module
// boundaries, protected paths, approval triggers, naming and size rules.
// The evaluator is pure; loading and schema validation live in load.go.
package policy

import (
	"path"
	"strings"
)

// Document is the parsed policy for one project. It is loaded once per
// guard lifetime and never mutated, only swapped wholesale.
type Document struct {
	Version       string                   `json:"version,omitempty" yaml:"version,omitempty"`
	Project       string                   `json:"project,omitempty" yaml:"project,omitempty"`
	TechStack     TechStack                `json:"techStack,omitempty" yaml:"techStack,omitempty"`
	Directories   map[string]DirectoryRule `json:"directories,omitempty" yaml:"directories,omitempty"`
	Boundaries    []BoundaryRule           `json:"boundaries,omitempty" yaml:"boundaries,omitempty"`
	Naming        map[string]string        `json:"naming,omitempty" yaml:"naming,omitempty"`
	CodeQuality   QualityRule              `json:"codeQuality,omitempty" yaml:"codeQuality,omitempty"`
	Modifications ModificationRules        `json:"modifications,omitempty" yaml:"modifications,omitempty"`
}

// TechStack describes the project's framework and the packages it bans.
type TechStack struct {
	Framework         string   `json:"framework,omitempty" yaml:"framework,omitempty"`
	Language          string   `json:"language,omitempty" yaml:"language,omitempty"`
	ForbiddenPackages []string `json:"forbiddenPackages,omitempty" yaml:"forbiddenPackages,omitempty"`
}

// DirectoryRule constrains files under one directory.
type DirectoryRule struct {
	MaxLines          int      `json:"maxLines,omitempty" yaml:"maxLines,omitempty"`
	RequiredExports   []string `json:"requiredExports,omitempty" yaml:"requiredExports,omitempty"`
	ForbiddenPatterns []string `json:"forbiddenPatterns,omitempty" yaml:"forbiddenPatterns,omitempty"`
	Pure              bool     `json:"pure,omitempty" yaml:"pure,omitempty"`
}

// BoundaryRule constrains what files matching From may import.
type BoundaryRule struct {
	From         string   `json:"from" yaml:"from"`
	CanImport    []string `json:"canImport,omitempty" yaml:"canImport,omitempty"`
	CannotImport []string `json:"cannotImport,omitempty" yaml:"cannotImport,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// QualityRule holds project-wide ceilings and banned code patterns.
type QualityRule struct {
	MaxFileLines      int      `json:"maxFileLines,omitempty" yaml:"maxFileLines,omitempty"`
	MaxFunctionLines  int      `json:"maxFunctionLines,omitempty" yaml:"maxFunctionLines,omitempty"`
	MaxParameters     int      `json:"maxParameters,omitempty" yaml:"maxParameters,omitempty"`
	ForbiddenPatterns []string `json:"forbiddenPatterns,omitempty" yaml:"forbiddenPatterns,omitempty"`
}

// ModificationRules lists paths that must not be touched and paths whose
// modification needs a human sign-off.
type ModificationRules struct {
	ProtectedFiles       []string       `json:"protectedFiles,omitempty" yaml:"protectedFiles,omitempty"`
	ProtectedDirectories []string       `json:"protectedDirectories,omitempty" yaml:"protectedDirectories,omitempty"`
	RequireApproval      []ApprovalRule `json:"requireApproval,omitempty" yaml:"requireApproval,omitempty"`
}

// ApprovalRule gates paths matching Pattern behind a human decision.
type ApprovalRule struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Reason  string `json:"reason" yaml:"reason"`
}

// DirectoryFor returns the most specific directory rule covering p and the
// directory key it matched, or an empty key and nil when none match.
func (d *Document) DirectoryFor(p string) (string, *DirectoryRule) {
	target := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	bestKey := ""
	var best *DirectoryRule
	for dir, rule := range d.Directories {
		key := strings.TrimSuffix(strings.ReplaceAll(dir, "\\", "/"), "/")
		if key == "" {
			continue
		}
		matched := false
		if hasGlobMeta(key) {
			matched = matchGlob(key, target)
		} else {
			matched = target == key || strings.HasPrefix(target, key+"/")
		}
		if matched && (best == nil || len(key) > len(bestKey) || (len(key) == len(bestKey) && key < bestKey)) {
			r := rule
			bestKey, best = key, &r
		}
	}
	return bestKey, best
}
