// Package timer implements the per-question countdown.
package timer

import (
	"time"

	"github.com/vytor/quizdeck/internal/clock"
)

// State is the lifecycle of one countdown.
type State int

const (
	Idle State = iota
	Running
	Expired
	Cleared
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Expired:
		return "expired"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Visual is the border state the presentation layer shows.
type Visual string

const (
	VisualIdle     Visual = "idle"
	VisualActive   Visual = "active"
	VisualWarning  Visual = "warning"
	VisualCritical Visual = "critical"
)

const (
	TickInterval  = time.Second
	WarningRatio  = 0.5
	CriticalRatio = 0.2
)

// Listener receives countdown notifications. Calls run inside the
// controller's executor.
type Listener interface {
	OnVisual(v Visual, remaining int)
	OnBlink()
	OnExpire()
}

// Controller runs one countdown at a time. It is not safe for concurrent
// use on its own; the owner serialises calls and passes the same
// serialisation as the executor so ticks join it.
type Controller struct {
	clock    clock.Clock
	exec     func(func())
	state    State
	duration int
	remain   int
	visual   Visual
	blink    bool
	gen      uint64
	handle   clock.Timer
	listener Listener
}

// Option configures a Controller.
type Option func(*Controller)

// WithExecutor wraps every tick in exec, typically a function that takes
// the owner's lock.
func WithExecutor(exec func(func())) Option {
	return func(c *Controller) {
		c.exec = exec
	}
}

func New(clk clock.Clock, opts ...Option) *Controller {
	c := &Controller{
		clock:  clk,
		exec:   func(f func()) { f() },
		visual: VisualIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a countdown of durationSeconds. It is a no-op for a
// non-positive duration. A running countdown is cleared first.
func (c *Controller) Start(durationSeconds int, l Listener) {
	c.Clear()
	if durationSeconds <= 0 {
		return
	}
	c.gen++
	c.state = Running
	c.duration = durationSeconds
	c.remain = durationSeconds
	c.listener = l
	c.setVisual(VisualActive)
	c.schedule(c.gen)
}

// Clear cancels the countdown. Calling it repeatedly is safe.
func (c *Controller) Clear() {
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}
	c.gen++
	if c.state == Running {
		c.state = Cleared
	}
	c.blink = false
	c.visual = VisualIdle
	c.listener = nil
}

func (c *Controller) State() State   { return c.state }
func (c *Controller) Running() bool  { return c.state == Running }
func (c *Controller) Remaining() int { return c.remain }
func (c *Controller) Duration() int  { return c.duration }
func (c *Controller) Visual() Visual { return c.visual }
func (c *Controller) Blinking() bool { return c.blink }

func (c *Controller) schedule(gen uint64) {
	c.handle = c.clock.AfterFunc(TickInterval, func() {
		c.exec(func() { c.tick(gen) })
	})
}

func (c *Controller) tick(gen uint64) {
	if gen != c.gen || c.state != Running {
		return
	}
	c.handle = nil
	c.remain--

	ratio := float64(c.remain) / float64(c.duration)
	switch {
	case ratio <= CriticalRatio:
		c.setVisual(VisualCritical)
	case ratio <= WarningRatio:
		c.setVisual(VisualWarning)
		if !c.blink {
			c.blink = true
			if c.listener != nil {
				c.listener.OnBlink()
			}
		}
	}

	if c.remain <= 0 {
		c.remain = 0
		c.state = Expired
		l := c.listener
		c.listener = nil
		if l != nil {
			l.OnExpire()
		}
		return
	}
	c.schedule(gen)
}

func (c *Controller) setVisual(v Visual) {
	if c.visual == v {
		return
	}
	c.visual = v
	if c.listener != nil {
		c.listener.OnVisual(v, c.remain)
	}
}
