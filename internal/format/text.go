// Package format holds terminal text helpers shared by the report renderers.
package format

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// escapes matches SGR colour sequences and OSC 8 hyperlink wrappers.
var escapes = regexp.MustCompile(`\x1b\[[0-9;]*m|\x1b\]8;;[^\x1b]*\x1b\\`)

const ellipsis = "..."

// StripAnsi removes colour and hyperlink escape sequences from s.
func StripAnsi(s string) string {
	return escapes.ReplaceAllString(s, "")
}

// DisplayWidth returns the number of terminal columns s occupies once
// escape sequences are removed.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// TruncateToWidth cuts s to at most maxWidth columns, ending in "..." when
// anything was removed. Escape sequences are dropped from a cut string.
// It returns the result and its display width.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	if w := DisplayWidth(s); w <= maxWidth {
		return s, w
	}
	if maxWidth <= len(ellipsis) {
		return ellipsis[:max(maxWidth, 0)], max(maxWidth, 0)
	}
	cut := runewidth.Truncate(StripAnsi(s), maxWidth, ellipsis)
	return cut, runewidth.StringWidth(cut)
}

// PadRight pads s with spaces to width columns.
func PadRight(s string, width int) string {
	if gap := width - DisplayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
