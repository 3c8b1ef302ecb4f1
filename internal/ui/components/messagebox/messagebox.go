// Package messagebox renders titled message boxes.
package messagebox

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Styles holds the styles needed by the message box.
type Styles struct {
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles returns default styles for the message box.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true),
		Muted:  lipgloss.NewStyle().Faint(true),
		Border: lipgloss.NewStyle(),
	}
}

// Render draws a rounded box of the given size with the title in the top
// border and the message lines centered inside.
func Render(styles Styles, title, message string, width, height int) string {
	if width < 4 {
		return ""
	}
	height = max(height, 3)

	border := lipgloss.RoundedBorder()
	innerWidth := width - 2

	titleText := ansi.Truncate(" "+title+" ", max(innerWidth-1, 0), "…")
	styledTitle := styles.Title.Render(titleText)
	rightPad := max(innerWidth-lipgloss.Width(styledTitle)-1, 0)

	hBar := styles.Border.Render(border.Top)
	topBorder := styles.Border.Render(border.TopLeft) +
		hBar +
		styledTitle +
		strings.Repeat(hBar, rightPad) +
		styles.Border.Render(border.TopRight)

	vBar := styles.Border.Render(border.Left)
	vBarRight := styles.Border.Render(border.Right)

	contentHeight := height - 2
	msgLines := strings.Split(message, "\n")
	if len(msgLines) > contentHeight {
		msgLines = msgLines[:contentHeight]
	}
	firstRow := (contentHeight - len(msgLines)) / 2

	middleLines := make([]string, 0, contentHeight)
	for i := range contentHeight {
		line := strings.Repeat(" ", innerWidth)
		if idx := i - firstRow; idx >= 0 && idx < len(msgLines) {
			text := ansi.Truncate(msgLines[idx], innerWidth, "…")
			textWidth := lipgloss.Width(text)
			leftPadding := (innerWidth - textWidth) / 2
			rightPadding := innerWidth - leftPadding - textWidth
			line = strings.Repeat(" ", leftPadding) + styles.Muted.Render(text) + strings.Repeat(" ", rightPadding)
		}
		middleLines = append(middleLines, vBar+line+vBarRight)
	}

	bottomBorder := styles.Border.Render(border.BottomLeft) +
		strings.Repeat(hBar, innerWidth) +
		styles.Border.Render(border.BottomRight)

	return topBorder + "\n" + strings.Join(middleLines, "\n") + "\n" + bottomBorder
}
