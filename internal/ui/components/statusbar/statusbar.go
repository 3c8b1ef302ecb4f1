// Package statusbar renders the bottom key hint bar with copy feedback.
package statusbar

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// CopiedLabel is shown while a copy confirmation is active.
const CopiedLabel = "Copied!"

// Styles holds the styles needed by the status bar.
type Styles struct {
	Bar     lipgloss.Style
	Key     lipgloss.Style
	Label   lipgloss.Style
	Copied  lipgloss.Style
	Failure lipgloss.Style
}

// DefaultStyles returns default styles for the status bar.
func DefaultStyles() Styles {
	return Styles{
		Bar:     lipgloss.NewStyle().Padding(0, 1),
		Key:     lipgloss.NewStyle().Padding(0, 1),
		Label:   lipgloss.NewStyle().PaddingRight(1),
		Copied:  lipgloss.NewStyle().Bold(true),
		Failure: lipgloss.NewStyle(),
	}
}

// Model defines state for the status bar component.
type Model struct {
	styles  Styles
	hints   []key.Binding
	width   int
	copied  bool
	failure string
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new status bar model.
func New(opts ...Option) Model {
	m := Model{
		styles: DefaultStyles(),
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(m *Model) {
		m.styles = s
	}
}

// WithHints sets the key bindings listed in the bar.
func WithHints(hints []key.Binding) Option {
	return func(m *Model) {
		m.hints = hints
	}
}

// SetHints sets the key bindings listed in the bar.
func (m *Model) SetHints(hints []key.Binding) {
	m.hints = hints
}

// SetWidth sets the width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetCopied toggles the copy confirmation badge.
func (m *Model) SetCopied(copied bool) {
	m.copied = copied
}

// SetFailure sets the failure notice. An empty string clears it. Only the
// first line is kept so the bar stays one row high.
func (m *Model) SetFailure(msg string) {
	first, _, _ := strings.Cut(msg, "\n")
	m.failure = strings.TrimRight(first, "\r")
}

// Copied reports whether the confirmation badge is visible.
func (m Model) Copied() bool {
	return m.copied
}

// Failure returns the failure notice.
func (m Model) Failure() string {
	return m.failure
}

// Height returns the height of the status bar (always 1).
func (m Model) Height() int {
	return 1
}

// Update handles messages.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	var items strings.Builder
	for _, b := range m.hints {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		items.WriteString(m.styles.Key.Render(help.Key))
		items.WriteString(m.styles.Label.Render(help.Desc))
	}
	left := items.String()

	var right string
	switch {
	case m.copied:
		right = m.styles.Copied.Render(CopiedLabel)
	case m.failure != "":
		right = m.styles.Failure.Render(m.failure)
	}

	inner := max(m.width-m.styles.Bar.GetHorizontalFrameSize(), 0)
	rightWidth := lipgloss.Width(right)
	if rightWidth > inner {
		right = ansi.Truncate(right, inner, "…")
		rightWidth = lipgloss.Width(right)
	}
	left = ansi.Truncate(left, max(inner-rightWidth-1, 0), "")
	gap := max(inner-lipgloss.Width(left)-rightWidth, 0)

	return m.styles.Bar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
