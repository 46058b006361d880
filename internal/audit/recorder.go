package audit

import (
	"log/slog"

	"github.com/kavrelis/preflight/internal/guard"
)

// Recorder adapts the writer into a guard listener. Append failures are
// logged and dropped so auditing never disturbs validation.
func (w *Writer) Recorder() guard.Listener {
	return func(n guard.Notification) {
		descriptions := make([]string, 0, len(n.Output.Actions))
		for _, a := range n.Output.Actions {
			descriptions = append(descriptions, a.Describe())
		}
		err := w.Append(Event{
			Time:            n.Time,
			RunID:           n.RunID,
			Decision:        n.Result.Decision(),
			Actions:         descriptions,
			BlockingReasons: n.Result.BlockingReasons,
			Warnings:        n.Result.Warnings,
		})
		if err != nil {
			slog.Warn("audit append failed", "error", err)
		}
	}
}
