package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte(content), 0644); err != nil {
		t.Fatalf("write package.json: %v", err)
	}
}

func TestLoad_ReadsAllDependencySections(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{
		"name": "demo",
		"dependencies": {"react": "^18.0.0"},
		"devDependencies": {"vitest": "^1.0.0"},
		"peerDependencies": {"react-dom": "^18.0.0"}
	}`)

	m := Load(root)
	for _, pkg := range []string{"react", "vitest", "react-dom"} {
		if !m.Declares(pkg) {
			t.Errorf("Declares(%q) = false, want true", pkg)
		}
	}
	if m.Declares("lodash") {
		t.Error("Declares(\"lodash\") = true, want false")
	}
}

func TestLoad_MissingManifestIsEmpty(t *testing.T) {
	m := Load(t.TempDir())
	if m.Declares("react") {
		t.Error("missing manifest declared a package")
	}
}

func TestLoad_MalformedManifestStaysConservative(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"react": "^18.0.0",}`)

	m := Load(root)
	if m.Declares("react") {
		t.Error("malformed manifest must not declare packages")
	}
}

func TestPackageRoot(t *testing.T) {
	tests := []struct {
		specifier string
		want      string
	}{
		{"react", "react"},
		{"lodash/fp", "lodash"},
		{"@scope/pkg", "@scope/pkg"},
		{"@scope/pkg/deep/module", "@scope/pkg"},
	}
	for _, tt := range tests {
		if got := PackageRoot(tt.specifier); got != tt.want {
			t.Errorf("PackageRoot(%q) = %q, want %q", tt.specifier, got, tt.want)
		}
	}
}

func TestInstalled(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "node_modules", "@scope", "pkg"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if !Installed(root, "@scope/pkg") {
		t.Error("Installed(@scope/pkg) = false, want true")
	}
	if Installed(root, "react") {
		t.Error("Installed(react) = true, want false")
	}
}
