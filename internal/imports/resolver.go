package imports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kavrelis/preflight/internal/check"
	"github.com/kavrelis/preflight/internal/manifest"
	"github.com/kavrelis/preflight/internal/probe"
)

// sourceExtensions is the candidate order for extensionless relative
// specifiers, mirroring the module resolution of the guarded project.
var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".json"}

// Resolve classifies and resolves a single specifier. sourceFile is the
// project-relative path the import would live in; root is the project root.
func Resolve(specifier, sourceFile, root string) check.Result {
	return resolveWith(manifest.Load(root), specifier, sourceFile, root)
}

// CheckAll resolves every specifier of a proposed file. When the action
// declares its imports those are used verbatim; otherwise they are
// extracted from text. Specifiers resolve independently and concurrently;
// the result order follows the specifier order, one result each.
func CheckAll(text, sourceFile, root string, declared []string) []check.Result {
	specs := declared
	if len(specs) == 0 {
		specs = Extract(text)
	}
	if len(specs) == 0 {
		return nil
	}

	m := manifest.Load(root)
	results := make([]check.Result, len(specs))
	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = resolveWith(m, spec, sourceFile, root)
		}()
	}
	wg.Wait()
	return results
}

func resolveWith(m *manifest.Manifest, specifier, sourceFile, root string) check.Result {
	switch {
	case strings.HasPrefix(specifier, "node:"):
		return check.Pass(check.KindImportValidity,
			fmt.Sprintf("%s is a trusted platform builtin", specifier)).
			WithDetails(&check.Details{Specifier: specifier})
	case !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/"):
		return resolvePackage(m, specifier, root)
	default:
		return resolveRelative(specifier, sourceFile, root)
	}
}

func resolvePackage(m *manifest.Manifest, specifier, root string) check.Result {
	pkg := manifest.PackageRoot(specifier)
	if manifest.Installed(root, pkg) || m.Declares(pkg) {
		return check.Pass(check.KindImportValidity, fmt.Sprintf("package %q is available", pkg)).
			WithDetails(&check.Details{Specifier: specifier})
	}
	return check.Block(check.KindImportValidity,
		fmt.Sprintf("package %q is not installed and not declared in the manifest", pkg)).
		WithDetails(&check.Details{Specifier: specifier})
}

func resolveRelative(specifier, sourceFile, root string) check.Result {
	tried := make([]string, 0, 1+2*len(sourceExtensions))
	for _, candidate := range relativeCandidates(specifier, sourceFile, root) {
		rel := candidate
		if r, err := filepath.Rel(root, candidate); err == nil {
			rel = r
		}
		tried = append(tried, rel)

		// a candidate that escapes the root can never be a legitimate hit
		if _, err := probe.Resolve(root, rel); err != nil {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return check.Pass(check.KindImportValidity,
				fmt.Sprintf("%s resolves to %s", specifier, rel)).
				WithDetails(&check.Details{Specifier: specifier})
		}
	}
	return check.Block(check.KindImportValidity,
		fmt.Sprintf("cannot resolve %q from %s", specifier, sourceFile)).
		WithDetails(&check.Details{Specifier: specifier, TriedPaths: tried})
}

// relativeCandidates lists every path the specifier could mean, in
// resolution order: the literal path, the literal path with each source
// extension, then an index file with each extension inside the literal
// path taken as a directory.
func relativeCandidates(specifier, sourceFile, root string) []string {
	var base string
	if strings.HasPrefix(specifier, "/") {
		base = filepath.Join(root, specifier)
	} else {
		base = filepath.Join(filepath.Dir(filepath.Join(root, sourceFile)), specifier)
	}
	base = filepath.Clean(base)

	candidates := []string{base}
	for _, ext := range sourceExtensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range sourceExtensions {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}
	return candidates
}
