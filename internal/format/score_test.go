package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBar(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		width    int
		expected string
	}{
		{"zero", 0, 10, "░░░░░░░░░░"},
		{"full", 100, 10, "██████████"},
		{"half", 50, 10, "█████░░░░░"},
		{"rounds up", 75, 10, "████████░░"},
		{"rounds down", 74, 10, "███████░░░"},
		{"clamped high", 150, 4, "████"},
		{"clamped low", -10, 4, "░░░░"},
		{"no width", 50, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScoreBar(tt.score, tt.width))
		})
	}
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, "strong"},
		{80, "strong"},
		{79, "fair"},
		{50, "fair"},
		{49, "weak"},
		{0, "weak"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ScoreBand(tt.score), "score %d", tt.score)
	}
}
