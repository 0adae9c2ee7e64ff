// Package wcwidth measures, pads and truncates strings by terminal display
// width: East-Asian wide characters take two columns, combining and other
// zero-width characters take none.
package wcwidth

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended to truncated values. It is one column wide.
const Ellipsis = "…"

// cond ignores the locale so ambiguous-width characters such as the ellipsis
// always take one column.
var cond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// RuneWidth returns the display width of r.
func RuneWidth(r rune) int {
	return cond.RuneWidth(r)
}

// Width returns the display width of s.
func Width(s string) int {
	return cond.StringWidth(s)
}

// Truncate shortens s to at most w columns. When s does not fit, it is cut
// at a character boundary and Ellipsis is appended within the budget.
func Truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if Width(s) <= w {
		return s
	}
	return cond.Truncate(s, w, Ellipsis)
}

// Clip cuts s to at most w columns without any marker. A negative w means
// no limit.
func Clip(s string, w int) string {
	if w < 0 || Width(s) <= w {
		return s
	}
	return cond.Truncate(s, w, "")
}

// PadRight appends spaces to s until it is w columns wide.
func PadRight(s string, w int) string {
	if n := w - Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
