package approval

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/kavrelis/preflight/internal/action"
)

// ActionFingerprint derives a stable identity for an action from the
// fields that define what it would do. Two actions with the same kind,
// paths and content share a fingerprint, so an approval granted for
// one covers an identical retry.
func ActionFingerprint(a action.Action) string {
	h := sha256.New()
	for _, part := range []string{string(a.Kind), a.TargetPath, a.SourcePath, a.Content} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
