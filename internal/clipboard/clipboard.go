// Package clipboard copies text to the system clipboard and tracks a short
// lived "just copied" confirmation state for the UI.
package clipboard

import (
	"errors"
	"time"
)

// DefaultResetDelay is how long the confirmation state stays active after a
// successful copy.
const DefaultResetDelay = 800 * time.Millisecond

// ErrUnavailable indicates that neither the native clipboard nor a terminal
// for the OSC 52 fallback could be reached.
var ErrUnavailable = errors.New("clipboard unavailable")

// State is the confirmation state of a Copier.
type State int

const (
	// Idle means no copy succeeded within the reset delay.
	Idle State = iota
	// Confirmed means a copy succeeded recently.
	Confirmed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// StrategyKind identifies how text reached the clipboard.
type StrategyKind int

const (
	// NativeWrite uses the operating system clipboard tool.
	NativeWrite StrategyKind = iota
	// LegacyFallback writes an OSC 52 sequence to the terminal.
	LegacyFallback
)

func (k StrategyKind) String() string {
	switch k {
	case NativeWrite:
		return "native"
	case LegacyFallback:
		return "osc52"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single copy request.
type Result struct {
	Strategy StrategyKind
	Err      error
}

// OK reports whether the copy succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}
