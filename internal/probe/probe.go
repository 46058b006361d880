// Package probe answers existence questions about action targets without
// ever mutating the filesystem. Every path is confined to the project root
// before it is touched.
package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kavrelis/preflight/internal/check"
)

// Resolve joins relPath onto root and rejects any result that lands outside
// the root. The returned path is absolute and cleaned.
func Resolve(root, relPath string) (string, error) {
	cleanRoot := filepath.Clean(root)
	abs := filepath.Clean(filepath.Join(cleanRoot, relPath))
	if abs != cleanRoot && !strings.HasPrefix(abs, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes project root", relPath)
	}
	return abs, nil
}

// Check probes relPath under root. wantExists states the precondition the
// action kind implies: reads, edits and deletes need the target present,
// creates do not. Confinement is checked before anything else; an escaping
// path blocks no matter what was expected of it.
func Check(root, relPath string, wantExists bool) check.Result {
	abs, err := Resolve(root, relPath)
	if err != nil {
		return check.Block(check.KindFileExistence, err.Error())
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil:
		if info.IsDir() {
			return check.Block(check.KindFileExistence,
				fmt.Sprintf("%s is a directory, expected a file", relPath))
		}
		if !wantExists {
			return check.Advisory(check.KindFileExistence,
				fmt.Sprintf("%s already exists and would be overwritten", relPath))
		}
		return check.Pass(check.KindFileExistence, fmt.Sprintf("%s exists", relPath))
	case errors.Is(err, fs.ErrNotExist):
		if wantExists {
			return check.Block(check.KindFileExistence, fmt.Sprintf("%s does not exist", relPath))
		}
		return check.Pass(check.KindFileExistence, fmt.Sprintf("%s does not exist yet", relPath))
	default:
		return check.Block(check.KindFileExistence, err.Error()).
			WithDetails(&check.Details{Err: err.Error()})
	}
}
