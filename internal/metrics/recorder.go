package metrics

import (
	"log/slog"

	"github.com/kavrelis/preflight/internal/guard"
)

// Recorder adapts the metrics recorder into a guard listener. Persist
// failures are logged and dropped so metrics never disturb validation.
func (m *RuntimeMetrics) Recorder() guard.Listener {
	return func(n guard.Notification) {
		if _, err := m.RecordRun(n.Elapsed, n.Result.Decision()); err != nil {
			slog.Warn("runtime metrics persist failed", "error", err)
		}
	}
}
