// Package preview renders the full text of the selected entry, with syntax
// highlighting when the text is JSON.
package preview

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/x/ansi"

	"github.com/kpumuk/lazycopy/internal/mathutil"
)

// Styles holds styles for preview text and JSON tokens.
type Styles struct {
	Text        lipgloss.Style
	Key         lipgloss.Style
	String      lipgloss.Style
	Number      lipgloss.Style
	Bool        lipgloss.Style
	Null        lipgloss.Style
	Punctuation lipgloss.Style
	Muted       lipgloss.Style
}

// DefaultStyles returns default styles.
func DefaultStyles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle(),
		Key:         lipgloss.NewStyle(),
		String:      lipgloss.NewStyle(),
		Number:      lipgloss.NewStyle(),
		Bool:        lipgloss.NewStyle(),
		Null:        lipgloss.NewStyle(),
		Punctuation: lipgloss.NewStyle(),
		Muted:       lipgloss.NewStyle(),
	}
}

// Model is the preview component state.
type Model struct {
	styles Styles
	width  int
	height int

	lines  []string
	tokens [][]chroma.Token
	isJSON bool
	size   int
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new preview model.
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

// SetSize sets the dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// LineCount returns the number of lines.
func (m Model) LineCount() int {
	return len(m.lines)
}

// IsJSON reports whether the current text was recognised as JSON.
func (m Model) IsJSON() bool {
	return m.isJSON
}

// Size returns the byte length of the current text.
func (m Model) Size() int {
	return m.size
}

// SetText sets the previewed text. Valid JSON objects and arrays are
// re-indented and tokenized for highlighting.
func (m *Model) SetText(text string) {
	m.lines = nil
	m.tokens = nil
	m.isJSON = false
	m.size = len(text)

	if text == "" {
		return
	}

	if indented, ok := indentJSON(text); ok {
		m.isJSON = true
		m.lines = strings.Split(indented, "\n")
		m.tokens = tokenizeJSONLines(indented)
		if len(m.tokens) != len(m.lines) {
			m.tokens = nil
		}
		return
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	m.lines = strings.Split(text, "\n")
}

// RenderLine renders a single line cut to width and padded with spaces.
func (m Model) RenderLine(index, width int) string {
	if width <= 0 {
		return ""
	}
	if index < 0 || index >= len(m.lines) {
		return strings.Repeat(" ", width)
	}
	if len(m.tokens) == len(m.lines) {
		return m.renderTokens(m.tokens[index], width)
	}

	return m.styles.Text.Render(cutLine(m.lines[index], width))
}

// View renders as many lines as fit in the preview height.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	rows := make([]string, 0, m.height)
	limit := m.height
	truncated := len(m.lines) > m.height
	if truncated {
		limit--
	}
	for i := 0; i < limit; i++ {
		rows = append(rows, m.RenderLine(i, m.width))
	}
	if truncated {
		more := len(m.lines) - limit
		rows = append(rows, m.styles.Muted.Render(cutLine("… "+pluralLines(more), m.width)))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderTokens(tokens []chroma.Token, width int) string {
	var builder strings.Builder
	col := 0

	for _, token := range tokens {
		if token.Type == chroma.EOFType {
			break
		}

		tokenWidth := lipgloss.Width(token.Value)
		if tokenWidth == 0 {
			continue
		}

		stop := mathutil.Clamp(width-col, 0, tokenWidth)
		segment := ansi.Cut(token.Value, 0, stop)
		if segment != "" {
			builder.WriteString(m.styleForToken(token).Render(segment))
		}

		col += tokenWidth
		if col >= width {
			break
		}
	}

	rendered := builder.String()
	if renderedWidth := lipgloss.Width(rendered); renderedWidth < width {
		rendered += strings.Repeat(" ", width-renderedWidth)
	}
	return rendered
}

func (m Model) styleForToken(token chroma.Token) lipgloss.Style {
	switch {
	case token.Type == chroma.NameTag:
		return m.styles.Key
	case token.Type.InSubCategory(chroma.LiteralString):
		return m.styles.String
	case token.Type.InSubCategory(chroma.LiteralNumber):
		return m.styles.Number
	case token.Type.InCategory(chroma.Keyword):
		if token.Value == "null" {
			return m.styles.Null
		}
		return m.styles.Bool
	case token.Type == chroma.Punctuation:
		return m.styles.Punctuation
	default:
		return m.styles.Text
	}
}

func cutLine(line string, width int) string {
	cut := ansi.Cut(line, 0, width)
	if cutWidth := lipgloss.Width(cut); cutWidth < width {
		cut += strings.Repeat(" ", width-cutWidth)
	}
	return cut
}

func pluralLines(n int) string {
	if n == 1 {
		return "1 more line"
	}
	return strconv.Itoa(n) + " more lines"
}

// indentJSON re-indents text when it is a JSON object or array.
func indentJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return "", false
	}
	if !json.Valid([]byte(trimmed)) {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

func tokenizeJSONLines(jsonText string) [][]chroma.Token {
	if jsonLexer == nil {
		return nil
	}

	iterator, err := jsonLexer.Tokenise(nil, jsonText)
	if err != nil {
		return nil
	}

	lines := [][]chroma.Token{{}}
	for _, token := range iterator.Tokens() {
		if token.Type == chroma.EOFType {
			break
		}
		if token.Value == "" {
			continue
		}

		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, []chroma.Token{})
			}
			if part == "" {
				continue
			}
			lines[len(lines)-1] = append(lines[len(lines)-1], chroma.Token{Type: token.Type, Value: part})
		}
	}

	return lines
}

var jsonLexer = func() chroma.Lexer {
	lexer := lexers.Get("json")
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}()
