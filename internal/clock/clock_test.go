package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayUsesUTCCalendarDay(t *testing.T) {
	saoPaulo := time.FixedZone("-03", -3*60*60)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"late evening west of UTC", time.Date(2024, time.May, 1, 23, 30, 0, 0, saoPaulo), time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)},
		{"early morning west of UTC", time.Date(2024, time.May, 2, 1, 0, 0, 0, saoPaulo), time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)},
		{"utc", time.Date(2024, time.May, 1, 23, 59, 59, 0, time.UTC), time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Today(Fixed{T: tc.now})
			assert.True(t, tc.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
