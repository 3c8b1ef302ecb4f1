// Package format provides UI formatting helpers.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

var nowFunc = time.Now

// Duration formats elapsed seconds as "2m3s", "1h30m", etc. (max 2 segments).
func Duration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm%ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// DurationSince formats the time elapsed since t, or "-" for the zero time.
func DurationSince(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return Duration(int64(nowFunc().Sub(t).Seconds()))
}

// Bytes formats bytes as "168 MB", "1.2 GB", etc.
func Bytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Line collapses text onto a single row and truncates it to width cells.
// Line breaks are shown as "⏎" and tabs as a single space.
func Line(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\r", "⏎", "\t", " ").Replace(text)
	return ansi.Truncate(text, width, "…")
}
