package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAnsi(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "hello", "hello"},
		{"colour", "\x1b[31mred\x1b[0m", "red"},
		{"bold colour", "\x1b[1;31;40mbold red\x1b[0m", "bold red"},
		{"hyperlink", "\x1b]8;;https://github.com/octocat\x1b\\octocat\x1b]8;;\x1b\\", "octocat"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripAnsi(tt.input))
		})
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"colour", "\x1b[31mred\x1b[0m", 3},
		{"hyperlink", "\x1b]8;;https://example.com\x1b\\link\x1b]8;;\x1b\\", 4},
		{"wide", "日本語", 6},
		{"mixed", "Hello, 世界!", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayWidth(tt.input))
		})
	}
}

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		maxWidth      int
		expectedStr   string
		expectedWidth int
	}{
		{"fits", "hello", 10, "hello", 5},
		{"exact", "hello", 5, "hello", 5},
		{"cut ascii", "hello world", 8, "hello...", 8},
		{"cut wide", "日本語テキスト", 7, "日本...", 7},
		{"colour kept when it fits", "\x1b[31mred\x1b[0m", 5, "\x1b[31mred\x1b[0m", 3},
		{"colour dropped when cut", "\x1b[31mred text\x1b[0m", 6, "red...", 6},
		{"tiny", "hello", 3, "...", 3},
		{"smaller than ellipsis", "hello", 2, "..", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStr, gotWidth := TruncateToWidth(tt.input, tt.maxWidth)
			assert.Equal(t, tt.expectedStr, gotStr)
			assert.Equal(t, tt.expectedWidth, gotWidth)
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "hi   ", PadRight("hi", 5))
	assert.Equal(t, "hello", PadRight("hello", 3))
	assert.Equal(t, "\x1b[31mred\x1b[0m  ", PadRight("\x1b[31mred\x1b[0m", 5))
	assert.Equal(t, "日本 ", PadRight("日本", 5))
}
