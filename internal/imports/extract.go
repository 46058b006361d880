// Package imports extracts import specifiers from proposed source text and
// resolves each one against the project: platform builtins are trusted,
// external packages must be installed or declared in the manifest, and
// relative specifiers must land on a real file.
package imports

import (
	"regexp"
	"sort"
)

var (
	staticImportRe  = regexp.MustCompile(`import\s+(?:[\w*\s{},$]+\s+from\s+)?['"]([^'"]+)['"]`)
	dynamicImportRe = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	requireRe       = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
)

// Extract returns the distinct import specifiers found in text, in order of
// first appearance. The three literal forms are recognized: static imports,
// dynamic import() calls and require() calls. Extraction is idempotent.
func Extract(text string) []string {
	type hit struct {
		pos  int
		spec string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{staticImportRe, dynamicImportRe, requireRe} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, hit{pos: m[0], spec: text[m[2]:m[3]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool, len(hits))
	specs := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.spec] {
			continue
		}
		seen[h.spec] = true
		specs = append(specs, h.spec)
	}
	return specs
}
