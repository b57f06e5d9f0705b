package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDisplayTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero padded", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024:01:02 08:34:05"},
		{"crosses midnight", time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC), "2025:01:01 01:30:00"},
		{"ignores input zone", time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("PDT", -7*3600)), "2024:06:02 00:30:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDisplayTimestamp(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-01-01T10:20:30Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 10, 20, 30, 0, time.UTC)))

	got, err = ParseDate("2024-01-01T10:20:30.250")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 10, 20, 30, 250_000_000, time.UTC)))

	_, err = ParseDate("01/02/2024")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 59, 999_000_000, time.UTC), got)
}
