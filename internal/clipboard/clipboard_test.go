package clipboard

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeProvider records every capability request.
type fakeProvider struct {
	mu        sync.Mutex
	secure    bool
	native    WriteFunc
	openErr   error
	writeErr  error
	panicOn   bool
	closeErr  error
	mux       Multiplexer
	scratches []*fakeScratch
}

func (p *fakeProvider) SecureContext() bool {
	return p.secure
}

func (p *fakeProvider) NativeWriter() (WriteFunc, bool) {
	return p.native, p.native != nil
}

func (p *fakeProvider) OpenScratch() (Scratch, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	s := &fakeScratch{writeErr: p.writeErr, panicOn: p.panicOn, closeErr: p.closeErr}
	p.mu.Lock()
	p.scratches = append(p.scratches, s)
	p.mu.Unlock()
	return s, nil
}

func (p *fakeProvider) Multiplexer() Multiplexer {
	return p.mux
}

func (p *fakeProvider) openScratches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	open := 0
	for _, s := range p.scratches {
		if !s.closed {
			open++
		}
	}
	return open
}

type fakeScratch struct {
	buf      bytes.Buffer
	writeErr error
	panicOn  bool
	closeErr error
	closed   bool
}

func (s *fakeScratch) Write(p []byte) (int, error) {
	if s.panicOn {
		panic("terminal exploded")
	}
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.buf.Write(p)
}

func (s *fakeScratch) Close() error {
	s.closed = true
	return s.closeErr
}

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	states []State
}

func (r *recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) onChange(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) transitions() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func newTestCopier(p Provider) (*Copier, *manualClock, *recorder) {
	clock := &manualClock{}
	rec := &recorder{}
	c := New(p,
		WithClock(clock),
		WithReporter(rec),
		WithOnChange(rec.onChange),
	)
	return c, clock, rec
}

func nativeOK(out *[]string) WriteFunc {
	return func(text string) error {
		*out = append(*out, text)
		return nil
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	c := New(&fakeProvider{})
	if c.ResetDelay() != 800*time.Millisecond {
		t.Fatalf("ResetDelay() = %v, want 800ms", c.ResetDelay())
	}
	if c.JustCopied() {
		t.Fatal("JustCopied() = true on a new Copier")
	}
	if c.State() != Idle {
		t.Fatalf("State() = %v, want idle", c.State())
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	var copied []string
	tests := []struct {
		name     string
		provider *fakeProvider
		want     StrategyKind
	}{
		{"secure with native", &fakeProvider{secure: true, native: nativeOK(&copied)}, NativeWrite},
		{"secure without native", &fakeProvider{secure: true}, LegacyFallback},
		{"insecure with native", &fakeProvider{native: nativeOK(&copied)}, LegacyFallback},
		{"insecure without native", &fakeProvider{}, LegacyFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Select(tt.provider).Kind(); got != tt.want {
				t.Fatalf("Select().Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCopyNativeSuccessResetsAfterDelay(t *testing.T) {
	t.Parallel()

	var copied []string
	p := &fakeProvider{secure: true, native: nativeOK(&copied)}
	c, clock, rec := newTestCopier(p)

	res := c.Copy(context.Background(), "0xdeadbeef")
	if !res.OK() {
		t.Fatalf("Copy() error = %v", res.Err)
	}
	if res.Strategy != NativeWrite {
		t.Fatalf("Strategy = %v, want native", res.Strategy)
	}
	if len(copied) != 1 || copied[0] != "0xdeadbeef" {
		t.Fatalf("native writer got %q", copied)
	}
	if !c.JustCopied() {
		t.Fatal("JustCopied() = false right after copy")
	}

	clock.Advance(799 * time.Millisecond)
	if !c.JustCopied() {
		t.Fatal("JustCopied() = false before the reset delay")
	}

	clock.Advance(time.Millisecond)
	if c.JustCopied() {
		t.Fatal("JustCopied() = true after the reset delay")
	}

	wantKinds := []EventKind{EventCopied, EventReset}
	if got := rec.kinds(); !equalKinds(got, wantKinds) {
		t.Fatalf("events = %v, want %v", got, wantKinds)
	}
	wantStates := []State{Confirmed, Idle}
	if got := rec.transitions(); !equalStates(got, wantStates) {
		t.Fatalf("transitions = %v, want %v", got, wantStates)
	}
}

func TestCopyNativeFailureKeepsIdle(t *testing.T) {
	t.Parallel()

	denied := errors.New("permission denied")
	p := &fakeProvider{secure: true, native: func(string) error { return denied }}
	c, clock, rec := newTestCopier(p)

	res := c.Copy(context.Background(), "text")
	if res.OK() {
		t.Fatal("Copy() succeeded, want failure")
	}
	if !errors.Is(res.Err, denied) {
		t.Fatalf("Copy() error = %v, want %v", res.Err, denied)
	}
	if c.JustCopied() {
		t.Fatal("JustCopied() = true after failure")
	}
	if clock.pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", clock.pending())
	}
	if got := rec.kinds(); !equalKinds(got, []EventKind{EventFailed}) {
		t.Fatalf("events = %v, want [failed]", got)
	}
	if got := rec.transitions(); len(got) != 0 {
		t.Fatalf("transitions = %v, want none", got)
	}
}

func TestCopyNativePanicIsRecovered(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{secure: true, native: func(string) error { panic("boom") }}
	c, _, _ := newTestCopier(p)

	res := c.Copy(context.Background(), "text")
	if res.OK() {
		t.Fatal("Copy() succeeded, want failure")
	}
	if c.JustCopied() {
		t.Fatal("JustCopied() = true after panic")
	}
}

func TestCopyNativeHonoursContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	finished := make(chan struct{})
	p := &fakeProvider{secure: true, native: func(string) error {
		defer close(finished)
		<-release
		return nil
	}}
	c, _, _ := newTestCopier(p)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := c.Copy(ctx, "slow")
	close(release)
	<-finished

	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("Copy() error = %v, want deadline exceeded", res.Err)
	}
	if c.JustCopied() {
		t.Fatal("JustCopied() = true after canceled copy")
	}
}

func TestCopyFallbackWritesSequenceAndReleasesScratch(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	c, _, _ := newTestCopier(p)

	res := c.Copy(context.Background(), "hello")
	if !res.OK() {
		t.Fatalf("Copy() error = %v", res.Err)
	}
	if res.Strategy != LegacyFallback {
		t.Fatalf("Strategy = %v, want osc52", res.Strategy)
	}
	if len(p.scratches) != 1 {
		t.Fatalf("scratches = %d, want 1", len(p.scratches))
	}
	// "hello" base64 encoded.
	want := "\x1b]52;c;aGVsbG8=\x07"
	if got := p.scratches[0].buf.String(); got != want {
		t.Fatalf("sequence = %q, want %q", got, want)
	}
	if p.openScratches() != 0 {
		t.Fatal("scratch left open after copy")
	}
	if !c.JustCopied() {
		t.Fatal("JustCopied() = false after fallback copy")
	}
}

func TestCopyFallbackTmuxPassthrough(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{mux: Tmux}
	c, _, _ := newTestCopier(p)

	if res := c.Copy(context.Background(), "hello"); !res.OK() {
		t.Fatalf("Copy() error = %v", res.Err)
	}
	got := p.scratches[0].buf.String()
	if !bytes.HasPrefix([]byte(got), []byte("\x1bPtmux;")) {
		t.Fatalf("sequence = %q, want tmux passthrough", got)
	}
}

func TestCopyFallbackFailuresReleaseScratch(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("broken pipe")
	closeErr := errors.New("bad descriptor")

	tests := []struct {
		name     string
		provider *fakeProvider
		wantErr  error
	}{
		{"write error", &fakeProvider{writeErr: writeErr}, writeErr},
		{"write panic", &fakeProvider{panicOn: true}, nil},
		{"close error", &fakeProvider{closeErr: closeErr}, closeErr},
		{"write and close error", &fakeProvider{writeErr: writeErr, closeErr: closeErr}, closeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, clock, rec := newTestCopier(tt.provider)

			res := c.Copy(context.Background(), "secret")
			if res.OK() {
				t.Fatal("Copy() succeeded, want failure")
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Fatalf("Copy() error = %v, want %v", res.Err, tt.wantErr)
			}
			if tt.provider.openScratches() != 0 {
				t.Fatal("scratch left open after failure")
			}
			if c.JustCopied() {
				t.Fatal("JustCopied() = true after failure")
			}
			if clock.pending() != 0 {
				t.Fatalf("pending timers = %d, want 0", clock.pending())
			}
			if got := rec.kinds(); !equalKinds(got, []EventKind{EventFailed}) {
				t.Fatalf("events = %v, want [failed]", got)
			}
		})
	}
}

func TestCopyWithoutTerminal(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{openErr: ErrUnavailable}
	c, _, _ := newTestCopier(p)

	res := c.Copy(context.Background(), "x")
	if !errors.Is(res.Err, ErrUnavailable) {
		t.Fatalf("Copy() error = %v, want ErrUnavailable", res.Err)
	}
	if c.JustCopied() {
		t.Fatal("JustCopied() = true without a terminal")
	}
}

func TestCopyTwiceWithinDelayExtendsWindow(t *testing.T) {
	t.Parallel()

	var copied []string
	p := &fakeProvider{secure: true, native: nativeOK(&copied)}
	c, clock, rec := newTestCopier(p)

	c.Copy(context.Background(), "first")
	clock.Advance(500 * time.Millisecond)
	c.Copy(context.Background(), "second")

	// The first reset would have fired here.
	clock.Advance(300 * time.Millisecond)
	if !c.JustCopied() {
		t.Fatal("first reset cleared the second confirmation")
	}

	clock.Advance(499 * time.Millisecond)
	if !c.JustCopied() {
		t.Fatal("JustCopied() = false before 800ms after the second copy")
	}

	clock.Advance(time.Millisecond)
	if c.JustCopied() {
		t.Fatal("JustCopied() = true 800ms after the second copy")
	}

	wantStates := []State{Confirmed, Idle}
	if got := rec.transitions(); !equalStates(got, wantStates) {
		t.Fatalf("transitions = %v, want %v", got, wantStates)
	}
	wantKinds := []EventKind{EventCopied, EventCopied, EventReset}
	if got := rec.kinds(); !equalKinds(got, wantKinds) {
		t.Fatalf("events = %v, want %v", got, wantKinds)
	}
}

func TestCopySameTextTwiceIsRepeatable(t *testing.T) {
	t.Parallel()

	var copied []string
	p := &fakeProvider{secure: true, native: nativeOK(&copied)}
	c, clock, rec := newTestCopier(p)

	for range 2 {
		c.Copy(context.Background(), "same")
		clock.Advance(DefaultResetDelay)
	}

	wantStates := []State{Confirmed, Idle, Confirmed, Idle}
	if got := rec.transitions(); !equalStates(got, wantStates) {
		t.Fatalf("transitions = %v, want %v", got, wantStates)
	}
}

func TestCopyEmptyText(t *testing.T) {
	t.Parallel()

	var copied []string
	p := &fakeProvider{secure: true, native: nativeOK(&copied)}
	c, _, _ := newTestCopier(p)

	if res := c.Copy(context.Background(), ""); !res.OK() {
		t.Fatalf("Copy(\"\") error = %v", res.Err)
	}
	if len(copied) != 1 || copied[0] != "" {
		t.Fatalf("native writer got %q, want one empty string", copied)
	}
}

func TestFailureAfterSuccessKeepsConfirmed(t *testing.T) {
	t.Parallel()

	fail := false
	p := &fakeProvider{secure: true, native: func(string) error {
		if fail {
			return errors.New("denied")
		}
		return nil
	}}
	c, clock, _ := newTestCopier(p)

	c.Copy(context.Background(), "ok")
	fail = true
	clock.Advance(400 * time.Millisecond)
	c.Copy(context.Background(), "nope")

	if !c.JustCopied() {
		t.Fatal("failure cleared the confirmation")
	}
	clock.Advance(400 * time.Millisecond)
	if c.JustCopied() {
		t.Fatal("failure extended the confirmation window")
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	var copied []string
	p := &fakeProvider{secure: true, native: nativeOK(&copied)}
	c, clock, rec := newTestCopier(p)

	c.Copy(context.Background(), "x")
	c.Close()

	if c.JustCopied() {
		t.Fatal("JustCopied() = true after Close")
	}
	if clock.pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", clock.pending())
	}
	clock.Advance(time.Second)

	wantStates := []State{Confirmed, Idle}
	if got := rec.transitions(); !equalStates(got, wantStates) {
		t.Fatalf("transitions = %v, want %v", got, wantStates)
	}
}

func TestCopyRealClock(t *testing.T) {
	t.Parallel()

	var copied []string
	p := &fakeProvider{secure: true, native: nativeOK(&copied)}
	reset := make(chan struct{})
	c := New(p,
		WithResetDelay(20*time.Millisecond),
		WithOnChange(func(s State) {
			if s == Idle {
				close(reset)
			}
		}),
	)

	c.Copy(context.Background(), "tick")
	if !c.JustCopied() {
		t.Fatal("JustCopied() = false right after copy")
	}

	select {
	case <-reset:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation never reset")
	}
	if c.JustCopied() {
		t.Fatal("JustCopied() = true after reset")
	}
}

func TestMultiReporter(t *testing.T) {
	t.Parallel()

	var a, b int
	r := MultiReporter(
		ReporterFunc(func(Event) { a++ }),
		nil,
		ReporterFunc(func(Event) { b++ }),
	)
	r.Report(Event{Kind: EventCopied})

	if a != 1 || b != 1 {
		t.Fatalf("reporter calls = %d, %d, want 1, 1", a, b)
	}
}

func TestStringers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got  string
		want string
	}{
		{Idle.String(), "idle"},
		{Confirmed.String(), "confirmed"},
		{State(9).String(), "unknown"},
		{NativeWrite.String(), "native"},
		{LegacyFallback.String(), "osc52"},
		{EventCopied.String(), "copied"},
		{EventFailed.String(), "failed"},
		{EventReset.String(), "reset"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func equalKinds(a, b []EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
