package clipboard

import (
	"context"
	"sync"
	"time"
)

// Timer is a scheduled reset that can be canceled.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Copier copies text and exposes the transient confirmation state.
//
// A successful copy moves the Copier to Confirmed and schedules a return to
// Idle after the reset delay. A later success cancels the pending reset and
// schedules a new one, so the state stays Confirmed until the delay has
// passed since the most recent success. Failures never change the state.
type Copier struct {
	provider Provider
	clock    Clock
	delay    time.Duration
	reporter Reporter
	onChange func(State)
	now      func() time.Time

	mu    sync.Mutex
	state State
	timer Timer
	gen   uint64
}

// Option is used to set options in New.
type Option func(*Copier)

// WithResetDelay sets how long the Confirmed state lasts.
func WithResetDelay(d time.Duration) Option {
	return func(c *Copier) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithClock sets the clock used to schedule resets.
func WithClock(clock Clock) Option {
	return func(c *Copier) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithReporter sets the diagnostics reporter.
func WithReporter(r Reporter) Option {
	return func(c *Copier) {
		c.reporter = r
	}
}

// WithOnChange sets a callback invoked on every state transition. The
// callback runs while the Copier holds its lock and must not call back into
// the Copier.
func WithOnChange(fn func(State)) Option {
	return func(c *Copier) {
		c.onChange = fn
	}
}

// New creates a Copier backed by the given provider.
func New(provider Provider, opts ...Option) *Copier {
	c := &Copier{
		provider: provider,
		clock:    realClock{},
		delay:    DefaultResetDelay,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ResetDelay returns the configured confirmation window.
func (c *Copier) ResetDelay() time.Duration {
	return c.delay
}

// Copy copies text to the clipboard. It never panics; the returned Result
// carries the failure, which is also sent to the reporter.
func (c *Copier) Copy(ctx context.Context, text string) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	strategy := Select(c.provider)
	result := Result{Strategy: strategy.Kind()}
	start := c.now()

	if err := strategy.Copy(ctx, text); err != nil {
		result.Err = err
		c.report(Event{
			Kind:     EventFailed,
			Strategy: result.Strategy,
			Bytes:    len(text),
			Err:      err,
			Time:     start,
			Duration: c.now().Sub(start),
		})
		return result
	}

	c.confirm()
	c.report(Event{
		Kind:     EventCopied,
		Strategy: result.Strategy,
		Bytes:    len(text),
		Time:     start,
		Duration: c.now().Sub(start),
	})
	return result
}

// JustCopied reports whether a copy succeeded within the reset delay.
func (c *Copier) JustCopied() bool {
	return c.State() == Confirmed
}

// State returns the current confirmation state.
func (c *Copier) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels a pending reset and returns the Copier to Idle.
func (c *Copier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.setState(Idle)
}

func (c *Copier) confirm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.delay, func() {
		c.expire(gen)
	})
	c.setState(Confirmed)
}

func (c *Copier) expire(gen uint64) {
	c.mu.Lock()
	// A newer copy or Close already replaced this timer.
	if gen != c.gen || c.state != Confirmed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.setState(Idle)
	c.mu.Unlock()

	c.report(Event{Kind: EventReset, Time: c.now()})
}

// setState must be called with c.mu held.
func (c *Copier) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onChange != nil {
		c.onChange(s)
	}
}

func (c *Copier) report(e Event) {
	if c.reporter == nil {
		return
	}
	c.reporter.Report(e)
}
