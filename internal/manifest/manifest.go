// Package manifest reads the dependency manifest of the guarded project.
// It is the source of truth for which external packages an action may
// legitimately import.
package manifest

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Manifest holds the dependency sections of a package.json. All other
// manifest fields are ignored.
type Manifest struct {
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// Load reads <root>/package.json. A missing or unreadable manifest yields
// an empty one: a manifest we cannot parse never widens trust.
func Load(root string) *Manifest {
	m := &Manifest{}
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, m); err != nil {
		slog.Warn("dependency manifest unreadable, treating all packages as undeclared", "error", err)
		return &Manifest{}
	}
	return m
}

// Declares reports whether pkg appears in dependencies, devDependencies or
// peerDependencies.
func (m *Manifest) Declares(pkg string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.Dependencies[pkg]; ok {
		return true
	}
	if _, ok := m.DevDependencies[pkg]; ok {
		return true
	}
	_, ok := m.PeerDependencies[pkg]
	return ok
}

// PackageRoot collapses an import specifier to its installable package
// name: "@scope/pkg/sub" becomes "@scope/pkg", "lodash/fp" becomes
// "lodash".
func PackageRoot(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// Installed reports whether pkg has an install directory under
// <root>/node_modules.
func Installed(root, pkg string) bool {
	info, err := os.Stat(filepath.Join(root, "node_modules", filepath.FromSlash(pkg)))
	return err == nil && info.IsDir()
}
