package messagebox

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestRenderDimensions(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(Render(DefaultStyles(), "History", "Redis is not configured\nUse --redis", 40, 7))
	lines := strings.Split(out, "\n")

	if len(lines) != 7 {
		t.Fatalf("len(lines) = %d, want 7", len(lines))
	}
	for i, line := range lines {
		if w := ansi.StringWidth(line); w != 40 {
			t.Errorf("line %d width = %d, want 40: %q", i, w, line)
		}
	}
	if !strings.Contains(lines[0], " History ") {
		t.Errorf("top border %q missing title", lines[0])
	}
	if !strings.Contains(out, "Redis is not configured") || !strings.Contains(out, "Use --redis") {
		t.Errorf("message missing from %q", out)
	}
}

func TestRenderTooNarrow(t *testing.T) {
	t.Parallel()

	if got := Render(DefaultStyles(), "x", "y", 3, 5); got != "" {
		t.Fatalf("Render() = %q, want empty", got)
	}
}

func TestRenderClipsLongMessage(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(Render(DefaultStyles(), "T", strings.Repeat("x", 100)+"\n2\n3\n4", 20, 4))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	for i, line := range lines {
		if w := ansi.StringWidth(line); w != 20 {
			t.Errorf("line %d width = %d, want 20", i, w)
		}
	}
}
