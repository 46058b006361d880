package guard

import (
	"time"

	"github.com/google/uuid"

	"github.com/kavrelis/preflight/internal/action"
)

// Notification describes one completed validation run.
type Notification struct {
	RunID   string        `json:"run_id"`
	Time    time.Time     `json:"time"`
	Elapsed time.Duration `json:"elapsed"`
	Output  action.Output `json:"output"`
	Result  Result        `json:"result"`
}

// Listener receives validation notifications. Listeners are invoked
// synchronously after aggregation; a slow listener slows Validate.
type Listener func(Notification)

// Subscribe registers fn and returns a token for Unsubscribe. The
// registry belongs to this Guard alone; there is no process-wide
// subscriber set.
func (g *Guard) Subscribe(fn Listener) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextListener++
	g.listeners[g.nextListener] = fn
	return g.nextListener
}

// Unsubscribe removes a listener. Unknown tokens are ignored.
func (g *Guard) Unsubscribe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.listeners, id)
}

func (g *Guard) notify(out action.Output, res Result, elapsed time.Duration) {
	g.mu.RLock()
	listeners := make([]Listener, 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.mu.RUnlock()

	if len(listeners) == 0 {
		return
	}
	n := Notification{
		RunID:   NewRunID(),
		Time:    time.Now().UTC(),
		Elapsed: elapsed,
		Output:  out,
		Result:  res,
	}
	for _, fn := range listeners {
		fn(n)
	}
}

// NewRunID returns a unique identifier correlating one validation run
// across notifications and audit entries.
func NewRunID() string {
	return uuid.New().String()
}
