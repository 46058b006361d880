package imports

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtract_AllThreeForms(t *testing.T) {
	text := `
import React from 'react';
import { useState } from "react";
import './styles.css';
const utils = require('./utils');
const mod = await import('node:path');
`
	got := Extract(text)
	want := []string{"react", "./styles.css", "./utils", "node:path"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %v, want %v", got, want)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	text := `import a from './a'; import b from './b';`
	first := Extract(text)
	second := Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Extract() not stable: %v vs %v", first, second)
	}
}

func TestExtract_NoImports(t *testing.T) {
	if got := Extract("const x = 1;"); len(got) != 0 {
		t.Fatalf("Extract() = %v, want none", got)
	}
}

func TestResolve_BuiltinNeverTouchesFilesystem(t *testing.T) {
	// a root that does not exist proves no filesystem access is needed
	r := Resolve("node:fs", "src/index.ts", "/nonexistent/project/root")
	if !r.Pass {
		t.Fatalf("builtin did not pass: %+v", r)
	}
}

func TestResolve_InstalledPackage(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "node_modules", "react"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	r := Resolve("react", "src/index.ts", root)
	if !r.Pass {
		t.Fatalf("installed package did not pass: %+v", r)
	}
}

func TestResolve_DeclaredButNotInstalled(t *testing.T) {
	root := t.TempDir()
	manifest := `{"dependencies": {"@scope/pkg": "^1.0.0"}}`
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	r := Resolve("@scope/pkg/deep/module", "src/index.ts", root)
	if !r.Pass {
		t.Fatalf("declared scoped package did not pass: %+v", r)
	}
}

func TestResolve_UnknownPackageBlocks(t *testing.T) {
	r := Resolve("left-pad", "src/index.ts", t.TempDir())
	if !r.Blocking() {
		t.Fatalf("unknown package not blocked: %+v", r)
	}
}

func TestResolve_RelativeWithExtension(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "src/utils/helpers.ts", "export {};")

	r := Resolve("./utils/helpers", "src/index.ts", root)
	if !r.Pass {
		t.Fatalf("relative import with extension candidate did not pass: %+v", r)
	}
}

func TestResolve_RelativeIndexFile(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "src/components/index.tsx", "export {};")

	r := Resolve("./components", "src/App.tsx", root)
	if !r.Pass {
		t.Fatalf("directory index import did not pass: %+v", r)
	}
}

func TestResolve_RootRelative(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "lib/api.ts", "export {};")

	r := Resolve("/lib/api", "src/deep/nested/file.ts", root)
	if !r.Pass {
		t.Fatalf("root-relative import did not pass: %+v", r)
	}
}

func TestResolve_MissingRelativeListsTriedPaths(t *testing.T) {
	r := Resolve("./missing", "src/index.ts", t.TempDir())
	if !r.Blocking() {
		t.Fatalf("missing relative import not blocked: %+v", r)
	}
	if r.Details == nil || len(r.Details.TriedPaths) == 0 {
		t.Fatalf("Details.TriedPaths empty: %+v", r.Details)
	}
	// literal + five extensions + five index candidates
	if got := len(r.Details.TriedPaths); got != 11 {
		t.Errorf("len(TriedPaths) = %d, want 11", got)
	}
}

func TestCheckAll_DeclaredImportsWinOverContent(t *testing.T) {
	root := t.TempDir()
	results := CheckAll("import x from './ignored';", "src/index.ts", root, []string{"node:url"})
	if len(results) != 1 {
		t.Fatalf("CheckAll() returned %d results, want 1", len(results))
	}
	if !results[0].Pass {
		t.Fatalf("declared builtin did not pass: %+v", results[0])
	}
}

func TestCheckAll_OneResultPerSpecifierInOrder(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "src/a.ts", "export {};")

	text := `
import a from './a';
import missing from './missing';
import path from 'node:path';
`
	results := CheckAll(text, "src/index.ts", root, nil)
	if len(results) != 3 {
		t.Fatalf("CheckAll() returned %d results, want 3", len(results))
	}
	if !results[0].Pass {
		t.Errorf("./a should resolve: %+v", results[0])
	}
	if !results[1].Blocking() {
		t.Errorf("./missing should block: %+v", results[1])
	}
	if !results[2].Pass {
		t.Errorf("node:path should pass: %+v", results[2])
	}
	if results[1].Details == nil || results[1].Details.Specifier != "./missing" {
		t.Errorf("result order not stable by input: %+v", results[1])
	}
}

func mustWrite(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}
