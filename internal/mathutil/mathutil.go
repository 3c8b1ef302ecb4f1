// Package mathutil provides common mathematical utility functions.
package mathutil

import "cmp"

// Clamp restricts a value to be within a specified range.
// Returns low if val < low, high if val > high, otherwise returns val.
func Clamp[T cmp.Ordered](val, low, high T) T {
	if val < low {
		return low
	}
	if val > high {
		return high
	}
	return val
}

// ScrollOffset returns the first visible row so that cursor stays inside a
// window of visible rows over total rows, moving the window as little as
// possible from offset.
func ScrollOffset(cursor, offset, visible, total int) int {
	if visible <= 0 || total <= visible {
		return 0
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+visible {
		offset = cursor - visible + 1
	}
	return Clamp(offset, 0, total-visible)
}
