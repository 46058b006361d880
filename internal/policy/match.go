package policy

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// matchGlob matches one path against a doublestar pattern. A pattern
// without glob characters must match exactly. Malformed patterns never
// match.
func matchGlob(pattern, target string) bool {
	p := strings.TrimSuffix(strings.ReplaceAll(pattern, "\\", "/"), "/")
	t := path.Clean(strings.ReplaceAll(target, "\\", "/"))
	if p == "" {
		return false
	}
	if !hasGlobMeta(p) {
		return t == p
	}
	ok, err := doublestar.Match(p, t)
	return err == nil && ok
}

// matchAnyGlob reports whether any pattern matches any of the given forms
// of a path or specifier, returning the pattern that hit.
func matchAnyGlob(patterns []string, forms []string) (string, bool) {
	for _, pattern := range patterns {
		for _, form := range forms {
			if matchGlob(pattern, form) {
				return pattern, true
			}
		}
	}
	return "", false
}

// underDirectory reports whether target equals dir or sits anywhere below
// it.
func underDirectory(dir, target string) bool {
	d := strings.TrimSuffix(strings.ReplaceAll(dir, "\\", "/"), "/")
	t := path.Clean(strings.ReplaceAll(target, "\\", "/"))
	if d == "" {
		return false
	}
	return t == d || strings.HasPrefix(t, d+"/")
}

// underDirectoryPattern is underDirectory with glob support: a glob
// pattern protects both the paths it matches and everything below them.
func underDirectoryPattern(pattern, target string) bool {
	if !hasGlobMeta(pattern) {
		return underDirectory(pattern, target)
	}
	p := strings.TrimSuffix(strings.ReplaceAll(pattern, "\\", "/"), "/")
	t := path.Clean(strings.ReplaceAll(target, "\\", "/"))
	if ok, err := doublestar.Match(p, t); err == nil && ok {
		return true
	}
	ok, err := doublestar.Match(p+"/**", t)
	return err == nil && ok
}

// matchPathRule matches approval-trigger patterns: globs match exactly,
// plain paths cover themselves and everything below.
func matchPathRule(pattern, target string) bool {
	if hasGlobMeta(pattern) {
		return matchGlob(pattern, target)
	}
	return underDirectory(pattern, target)
}

// importForms returns every shape an import specifier should be matched
// under: the raw specifier, and for relative specifiers the project path
// it normalizes to from the importing file.
func importForms(specifier, fromPath string) []string {
	forms := []string{specifier}
	if strings.HasPrefix(specifier, ".") {
		normalized := path.Clean(path.Join(path.Dir(strings.ReplaceAll(fromPath, "\\", "/")), specifier))
		if normalized != specifier {
			forms = append(forms, normalized)
		}
	} else if strings.HasPrefix(specifier, "/") {
		forms = append(forms, strings.TrimPrefix(path.Clean(specifier), "/"))
	}
	return forms
}
