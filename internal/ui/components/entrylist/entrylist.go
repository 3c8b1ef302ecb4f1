// Package entrylist renders a scrollable, single-selection list of text
// entries.
package entrylist

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kpumuk/lazycopy/internal/mathutil"
	"github.com/kpumuk/lazycopy/internal/ui/format"
)

// Styles holds the styles needed by the list.
type Styles struct {
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles returns default styles for the list.
func DefaultStyles() Styles {
	return Styles{
		Text:     lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Faint(true),
		Selected: lipgloss.NewStyle().Reverse(true),
	}
}

// KeyMap defines list navigation bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	PageUp key.Binding
	PageDn key.Binding
}

// DefaultKeyMap returns the default navigation bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom: key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		PageUp: key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDn: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	}
}

// Item is a single list row.
type Item struct {
	// Label is rendered in the list.
	Label string
	// Value is what gets copied. Label is used when Value is empty.
	Value string
	// Meta is rendered muted on the right, e.g. an age.
	Meta string
}

// Text returns the value to copy for the item.
func (i Item) Text() string {
	if i.Value != "" {
		return i.Value
	}
	return i.Label
}

// Model defines state for the list component.
type Model struct {
	styles Styles
	keys   KeyMap
	items  []Item
	cursor int
	offset int
	width  int
	height int
	empty  string
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new list model.
func New(opts ...Option) Model {
	m := Model{
		styles: DefaultStyles(),
		keys:   DefaultKeyMap(),
		empty:  "Nothing to copy",
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

// WithItems sets the initial items.
func WithItems(items []Item) Option {
	return func(m *Model) {
		m.items = items
	}
}

// WithEmptyMessage sets the text shown when there are no items.
func WithEmptyMessage(msg string) Option {
	return func(m *Model) {
		m.empty = msg
	}
}

// SetItems replaces the items, keeping the cursor in range.
func (m *Model) SetItems(items []Item) {
	m.items = items
	m.cursor = mathutil.Clamp(m.cursor, 0, max(len(items)-1, 0))
	m.offset = mathutil.ScrollOffset(m.cursor, m.offset, m.height, len(m.items))
}

// SetSize sets the width and height.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.offset = mathutil.ScrollOffset(m.cursor, m.offset, m.height, len(m.items))
}

// Items returns the items.
func (m Model) Items() []Item {
	return m.items
}

// Cursor returns the selected index.
func (m Model) Cursor() int {
	return m.cursor
}

// Selected returns the selected item.
func (m Model) Selected() (Item, bool) {
	if len(m.items) == 0 {
		return Item{}, false
	}
	return m.items[m.cursor], true
}

// Update handles navigation keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return m, nil
	}

	page := max(m.height-1, 1)
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.cursor--
	case key.Matches(keyMsg, m.keys.Down):
		m.cursor++
	case key.Matches(keyMsg, m.keys.Top):
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.Bottom):
		m.cursor = len(m.items) - 1
	case key.Matches(keyMsg, m.keys.PageUp):
		m.cursor -= page
	case key.Matches(keyMsg, m.keys.PageDn):
		m.cursor += page
	default:
		return m, nil
	}

	m.cursor = mathutil.Clamp(m.cursor, 0, len(m.items)-1)
	m.offset = mathutil.ScrollOffset(m.cursor, m.offset, m.height, len(m.items))
	return m, nil
}

// View renders the visible rows, padded to the full height.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	lines := make([]string, 0, m.height)
	if len(m.items) == 0 {
		lines = append(lines, m.styles.Muted.Render(format.Line(m.empty, m.width)))
	}

	end := min(m.offset+m.height, len(m.items))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.items[i], i == m.cursor))
	}

	blank := strings.Repeat(" ", m.width)
	for len(lines) < m.height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(item Item, selected bool) string {
	meta := ""
	labelWidth := m.width - 2
	if item.Meta != "" {
		meta = format.Line(item.Meta, m.width/3)
		labelWidth -= lipgloss.Width(meta) + 1
	}

	label := format.Line(item.Label, max(labelWidth, 0))
	pad := m.width - 2 - lipgloss.Width(label) - lipgloss.Width(meta)
	if pad < 0 {
		pad = 0
	}
	row := " " + label + strings.Repeat(" ", pad) + meta + " "

	if selected {
		return m.styles.Selected.Render(row)
	}
	if meta == "" {
		return m.styles.Text.Render(row)
	}
	return m.styles.Text.Render(" "+label+strings.Repeat(" ", pad)) + m.styles.Muted.Render(meta+" ")
}
