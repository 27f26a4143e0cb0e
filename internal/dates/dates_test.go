package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Sunday
var now = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"today", time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)},
		{"Tomorrow", time.Date(2025, 6, 2, 23, 59, 59, 0, time.UTC)},
		{"nextweek", time.Date(2025, 6, 8, 23, 59, 59, 0, time.UTC)},
		{"fri", time.Date(2025, 6, 6, 23, 59, 59, 0, time.UTC)},
		{"sunday", time.Date(2025, 6, 8, 23, 59, 59, 0, time.UTC)},
		{"2025-07-04", time.Date(2025, 7, 4, 23, 59, 59, 0, time.UTC)},
		{"12/24/2026", time.Date(2026, 12, 24, 23, 59, 59, 0, time.UTC)},
		{"jan 5", time.Date(2025, 1, 5, 23, 59, 59, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "soon", "2025-13-40"} {
		_, ok := Parse(in, now)
		assert.False(t, ok, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "today", Format(EndOfDay(now), now))
	assert.Equal(t, "tomorrow", Format(now.AddDate(0, 0, 1), now))
	assert.Equal(t, "yesterday", Format(now.AddDate(0, 0, -1), now))
	assert.Equal(t, "Fri, Jun 6", Format(now.AddDate(0, 0, 5), now))
	assert.Equal(t, "Jan 2, 2024", Format(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), now))
}
