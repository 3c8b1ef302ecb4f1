package clipboard

import "time"

// EventKind describes a reported copy event.
type EventKind int

const (
	// EventCopied is reported after a successful copy.
	EventCopied EventKind = iota
	// EventFailed is reported when a copy attempt fails.
	EventFailed
	// EventReset is reported when the confirmation window expires.
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventCopied:
		return "copied"
	case EventFailed:
		return "failed"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is a single diagnostic record produced by a Copier.
type Event struct {
	Kind     EventKind
	Strategy StrategyKind
	Bytes    int
	Err      error
	Time     time.Time
	Duration time.Duration
}

// Reporter receives copy diagnostics.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) {
	f(e)
}

// MultiReporter fans events out to every non-nil reporter.
func MultiReporter(reporters ...Reporter) Reporter {
	list := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			list = append(list, r)
		}
	}
	return multiReporter(list)
}

type multiReporter []Reporter

func (m multiReporter) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}
