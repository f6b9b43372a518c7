package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"90s", 90 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"30m", 30 * time.Minute, false},
		{"30min", 30 * time.Minute, false},
		{"1h", time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{" 5m ", 5 * time.Minute, false},
		{"", 0, true},
		{"invalid", 0, true},
		{"3fortnights", 0, true},
		{"-1d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrDefault(t *testing.T) {
	got, err := OrDefault("", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, got)

	got, err = OrDefault("10m", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, got)

	_, err = OrDefault("nope", time.Hour)
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{48 * time.Hour, "2d"},
		{time.Hour, "1h"},
		{5 * time.Minute, "5m"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
			back, err := Parse(Format(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}
