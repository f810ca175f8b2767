// Package onboarding implements the step carousel shown to first-time
// visitors: a fixed list of steps, a current position, a transition lock
// and navigation by button or horizontal swipe.
package onboarding

import (
	"errors"
	"math"
	"sync"
	"time"
)

const (
	// DefaultTransition is how long a step change holds the transition lock.
	DefaultTransition = 500 * time.Millisecond
	// DefaultSwipeThreshold is the horizontal distance, in logical pixels,
	// a gesture must exceed to count as a swipe.
	DefaultSwipeThreshold = 60.0
)

// ErrNoSteps is returned when a controller is created without steps.
var ErrNoSteps = errors.New("onboarding: no steps")

// Options configures a Controller. Zero values fall back to the defaults.
type Options struct {
	Transition     time.Duration
	SwipeThreshold float64
	Scheduler      Scheduler
	// OnComplete is called, outside the controller lock, each time the
	// visitor finishes or skips the tour.
	OnComplete func()
}

// State is a point-in-time view of the carousel.
type State struct {
	Index         int      `json:"index"`
	Total         int      `json:"total"`
	Transitioning bool     `json:"transitioning"`
	GestureOrigin *float64 `json:"gestureOrigin,omitempty"`
	Step          Step     `json:"step"`
	IsFirst       bool     `json:"isFirst"`
	IsLast        bool     `json:"isLast"`
}

// Controller holds the carousel state. It is safe for concurrent use.
//
// The transition reset is scheduled on a timer; each navigation bumps a
// generation counter and the reset only applies while its generation is
// current and the controller is open.
type Controller struct {
	steps      []Step
	transition time.Duration
	threshold  float64
	sched      Scheduler
	onComplete func()

	mu            sync.Mutex
	index         int
	transitioning bool
	origin        float64
	hasOrigin     bool
	generation    uint64
	timer         Timer
	closed        bool
}

// New returns a controller positioned on the first step.
func New(steps []Step, opts Options) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	c := &Controller{
		steps:      append([]Step(nil), steps...),
		transition: opts.Transition,
		threshold:  opts.SwipeThreshold,
		sched:      opts.Scheduler,
		onComplete: opts.OnComplete,
	}
	if c.transition <= 0 {
		c.transition = DefaultTransition
	}
	if c.threshold <= 0 {
		c.threshold = DefaultSwipeThreshold
	}
	if c.sched == nil {
		c.sched = SystemScheduler()
	}
	return c, nil
}

// GoToStep moves to target unless a transition is in flight, target is the
// current step, or target is out of range. It reports whether it moved.
func (c *Controller) GoToStep(target int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goToLocked(target)
}

// Next advances one step; a no-op on the last step.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextLocked()
}

// Back returns one step; a no-op on the first step.
func (c *Controller) Back() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backLocked()
}

// GestureStart records the horizontal origin of a touch.
func (c *Controller) GestureStart(x float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.origin = x
	c.hasOrigin = true
}

// GestureEnd resolves a swipe. A leftward drag (origin - x > threshold)
// advances, a rightward one goes back. The origin is cleared either way.
func (c *Controller) GestureEnd(x float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.hasOrigin {
		return false
	}
	delta := c.origin - x
	c.origin = 0
	c.hasOrigin = false

	if math.Abs(delta) <= c.threshold {
		return false
	}
	if delta > 0 {
		return c.nextLocked()
	}
	return c.backLocked()
}

// Complete signals the host that onboarding is finished. The carousel
// state is left untouched.
func (c *Controller) Complete() {
	c.mu.Lock()
	closed := c.closed
	fn := c.onComplete
	c.mu.Unlock()

	if closed || fn == nil {
		return
	}
	fn()
}

// Close discards the controller. A pending transition reset is cancelled
// and every later call is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// State returns a snapshot of the carousel.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Index:         c.index,
		Total:         len(c.steps),
		Transitioning: c.transitioning,
		Step:          c.steps[c.index],
		IsFirst:       c.index == 0,
		IsLast:        c.index == len(c.steps)-1,
	}
	if c.hasOrigin {
		origin := c.origin
		s.GestureOrigin = &origin
	}
	return s
}

// Steps returns a copy of the configured steps.
func (c *Controller) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

func (c *Controller) nextLocked() bool {
	if c.index >= len(c.steps)-1 {
		return false
	}
	return c.goToLocked(c.index + 1)
}

func (c *Controller) backLocked() bool {
	if c.index <= 0 {
		return false
	}
	return c.goToLocked(c.index - 1)
}

func (c *Controller) goToLocked(target int) bool {
	if c.closed || c.transitioning || target == c.index {
		return false
	}
	if target < 0 || target >= len(c.steps) {
		return false
	}
	c.transitioning = true
	c.index = target
	c.generation++
	gen := c.generation
	c.timer = c.sched.AfterFunc(c.transition, func() { c.settle(gen) })
	return true
}

func (c *Controller) settle(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}
	c.transitioning = false
	c.timer = nil
}
