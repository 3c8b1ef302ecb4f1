package clipboard

import (
	"fmt"
	"os"
	"strings"

	sysclip "github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
)

// SystemProvider uses the operating system clipboard when running in a local
// session and falls back to OSC 52 on the controlling terminal otherwise.
type SystemProvider struct {
	forceFallback bool
	getenv        func(string) string
	openTTY       func() (*os.File, error)
	stdout        *os.File
}

// SystemOption is used to set options in NewSystemProvider.
type SystemOption func(*SystemProvider)

// WithForceFallback always uses OSC 52, even in a local session.
func WithForceFallback(force bool) SystemOption {
	return func(p *SystemProvider) {
		p.forceFallback = force
	}
}

// WithEnv sets the environment lookup used for session detection.
func WithEnv(getenv func(string) string) SystemOption {
	return func(p *SystemProvider) {
		if getenv != nil {
			p.getenv = getenv
		}
	}
}

// NewSystemProvider creates a provider for the current process.
func NewSystemProvider(opts ...SystemOption) *SystemProvider {
	p := &SystemProvider{
		getenv: os.Getenv,
		openTTY: func() (*os.File, error) {
			return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		},
		stdout: os.Stdout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SecureContext reports whether the native clipboard belongs to the user
// looking at the terminal. Over SSH it would write to the remote host.
func (p *SystemProvider) SecureContext() bool {
	if p.forceFallback {
		return false
	}
	return !p.remoteSession()
}

// NativeWriter returns the OS clipboard writer when a clipboard tool exists.
func (p *SystemProvider) NativeWriter() (WriteFunc, bool) {
	if sysclip.Unsupported {
		return nil, false
	}
	return sysclip.WriteAll, true
}

// OpenScratch opens the controlling terminal for writing. When there is no
// controlling terminal, stdout is used if it is a terminal.
func (p *SystemProvider) OpenScratch() (Scratch, error) {
	tty, err := p.openTTY()
	if err == nil {
		return tty, nil
	}

	if p.stdout != nil {
		fd := p.stdout.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return nopCloser{p.stdout}, nil
		}
	}

	return nil, fmt.Errorf("%w: no terminal for osc52: %v", ErrUnavailable, err)
}

// Multiplexer detects tmux and GNU screen from the environment.
func (p *SystemProvider) Multiplexer() Multiplexer {
	term := p.getenv("TERM")
	switch {
	case p.getenv("TMUX") != "" || strings.HasPrefix(term, "tmux"):
		return Tmux
	case p.getenv("STY") != "" || strings.HasPrefix(term, "screen"):
		return Screen
	default:
		return NoMultiplexer
	}
}

func (p *SystemProvider) remoteSession() bool {
	for _, name := range []string{"SSH_TTY", "SSH_CONNECTION", "SSH_CLIENT"} {
		if p.getenv(name) != "" {
			return true
		}
	}
	return false
}

// nopCloser keeps stdout open after a fallback copy.
type nopCloser struct {
	*os.File
}

func (nopCloser) Close() error {
	return nil
}
