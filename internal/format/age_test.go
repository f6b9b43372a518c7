package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAge(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "now"},
		{"negative", -time.Hour, "now"},
		{"59 seconds", 59 * time.Second, "now"},
		{"1 minute", time.Minute, "1m"},
		{"59 minutes", 59 * time.Minute, "59m"},
		{"1 hour", time.Hour, "1h"},
		{"23 hours", 23 * time.Hour, "23h"},
		{"1 day", day, "1d"},
		{"6 days", 6 * day, "6d"},
		{"1 week", 7 * day, "1w"},
		{"29 days", 29 * day, "4w"},
		{"30 days", 30 * day, "1mo"},
		{"364 days", 364 * day, "12mo"},
		{"1 year", 365 * day, "1y"},
		{"3 years", 3 * 365 * day, "3y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Age(tt.duration))
		})
	}
}
