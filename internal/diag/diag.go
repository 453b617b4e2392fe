// Package diag carries non-fatal pipeline diagnostics.
//
// Stages that degrade instead of failing (a filter whose column is missing,
// an aggregation with nothing to group on) report what happened through a
// Sink so callers decide whether to surface it.
package diag

import (
	"fmt"
	"sync"
)

// Notice is a single diagnostic from a pipeline stage.
type Notice struct {
	Stage   string
	Message string
}

func (n Notice) String() string {
	if n.Stage == "" {
		return n.Message
	}
	return n.Stage + ": " + n.Message
}

// Sink receives notices. Implementations must tolerate concurrent calls.
type Sink interface {
	Notify(Notice)
}

// Discard drops every notice.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(Notice) {}

// Collector accumulates notices in arrival order.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func (c *Collector) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of everything collected so far.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Messages returns the rendered form of each notice.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.notices))
	for _, n := range c.notices {
		out = append(out, n.String())
	}
	return out
}

// Len reports how many notices have been collected.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notices)
}

// Emit formats and delivers a notice. A nil sink is a no-op.
func Emit(s Sink, stage, format string, args ...any) {
	if s == nil {
		return
	}
	s.Notify(Notice{Stage: stage, Message: fmt.Sprintf(format, args...)})
}
