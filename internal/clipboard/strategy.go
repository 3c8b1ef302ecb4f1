package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// WriteFunc writes text to the native clipboard.
type WriteFunc func(text string) error

// Scratch is a temporary terminal handle used by the OSC 52 fallback. It is
// closed after every copy attempt.
type Scratch interface {
	io.WriteCloser
}

// Multiplexer identifies a terminal multiplexer that needs OSC 52 passthrough.
type Multiplexer int

const (
	// NoMultiplexer writes the sequence as is.
	NoMultiplexer Multiplexer = iota
	// Tmux wraps the sequence in a tmux DCS passthrough.
	Tmux
	// Screen wraps the sequence for GNU screen.
	Screen
)

// Provider exposes the platform capabilities a copy may use.
type Provider interface {
	// SecureContext reports whether the native clipboard may be used.
	SecureContext() bool
	// NativeWriter returns the native clipboard writer, if one exists.
	NativeWriter() (WriteFunc, bool)
	// OpenScratch acquires a terminal handle for the fallback path.
	OpenScratch() (Scratch, error)
	// Multiplexer reports the multiplexer wrapping the terminal.
	Multiplexer() Multiplexer
}

// Strategy copies text using one platform capability.
type Strategy interface {
	Kind() StrategyKind
	Copy(ctx context.Context, text string) error
}

// Select picks the strategy for a single copy request.
func Select(p Provider) Strategy {
	if p.SecureContext() {
		if write, ok := p.NativeWriter(); ok && write != nil {
			return nativeStrategy{write: write}
		}
	}
	return fallbackStrategy{provider: p}
}

type nativeStrategy struct {
	write WriteFunc
}

func (nativeStrategy) Kind() StrategyKind {
	return NativeWrite
}

func (s nativeStrategy) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("native copy: %w", err)
	}

	// Buffered so the writer goroutine can finish after ctx is canceled.
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("native copy panicked: %v", r)
			}
		}()
		done <- s.write(text)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("native copy: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("native copy: %w", ctx.Err())
	}
}

type fallbackStrategy struct {
	provider Provider
}

func (fallbackStrategy) Kind() StrategyKind {
	return LegacyFallback
}

func (s fallbackStrategy) Copy(ctx context.Context, text string) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("osc52 copy: %w", err)
	}

	scratch, err := s.provider.OpenScratch()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if scratch == nil {
		return fmt.Errorf("open terminal: %w", ErrUnavailable)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("osc52 copy panicked: %v", r)
		}
		if closeErr := scratch.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close terminal: %w", closeErr))
		}
	}()

	seq := osc52.New(text)
	switch s.provider.Multiplexer() {
	case Tmux:
		seq = seq.Tmux()
	case Screen:
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(scratch); err != nil {
		return fmt.Errorf("write osc52 sequence: %w", err)
	}
	return nil
}
