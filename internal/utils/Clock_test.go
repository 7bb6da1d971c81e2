package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skip("timezone data not available")
	}

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{"same day different hours", time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC), time.Date(2025, 3, 15, 23, 0, 0, 0, time.UTC), 0},
		{"one day later", time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC), time.Date(2025, 3, 16, 0, 1, 0, 0, time.UTC), 1},
		{"one day earlier", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), -1},
		{"across month", time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 30},
		{"across dst change", time.Date(2025, 3, 29, 12, 0, 0, 0, warsaw), time.Date(2025, 3, 31, 12, 0, 0, 0, warsaw), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestToday(t *testing.T) {
	clock := &MockClock{}
	clock.SetNow(time.Date(2025, 3, 15, 17, 45, 12, 99, time.UTC))

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), Today(clock))
}
