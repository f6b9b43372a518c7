package format

import "strings"

const (
	barFull  = "█"
	barEmpty = "░"
)

// ClampScore limits a score to the 0-100 range.
func ClampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// ScoreBar renders a 0-100 score as a bar of the given width.
// Partial cells are rounded to the nearest whole cell.
func ScoreBar(score, width int) string {
	if width <= 0 {
		return ""
	}
	filled := (ClampScore(score)*width + 50) / 100
	return strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, width-filled)
}

// ScoreBand names the band a score falls in: "strong" at 80 and above,
// "fair" at 50 and above, "weak" otherwise.
func ScoreBand(score int) string {
	switch {
	case score >= 80:
		return "strong"
	case score >= 50:
		return "fair"
	}
	return "weak"
}
