package ui

import (
	"bytes"
	"strings"
	"sync"

	"github.com/kpumuk/lazycopy/internal/clipboard"
)

// programOutput hands OSC 52 sequences to the program instead of writing
// them to the terminal directly, so they are emitted between frames.
type programOutput struct {
	clipboard.Provider

	mu      sync.Mutex
	pending []string
}

func newProgramOutput(p clipboard.Provider) *programOutput {
	return &programOutput{Provider: p}
}

// OpenScratch returns a buffer that queues the sequence when closed.
func (p *programOutput) OpenScratch() (clipboard.Scratch, error) {
	return &outputScratch{out: p}, nil
}

// take returns and clears the queued sequences.
func (p *programOutput) take() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	seq := strings.Join(p.pending, "")
	p.pending = nil
	return seq
}

func (p *programOutput) queue(seq string) {
	p.mu.Lock()
	p.pending = append(p.pending, seq)
	p.mu.Unlock()
}

type outputScratch struct {
	out *programOutput
	buf bytes.Buffer
}

func (s *outputScratch) Write(b []byte) (int, error) {
	return s.buf.Write(b)
}

func (s *outputScratch) Close() error {
	if s.buf.Len() > 0 {
		s.out.queue(s.buf.String())
		s.buf.Reset()
	}
	return nil
}
