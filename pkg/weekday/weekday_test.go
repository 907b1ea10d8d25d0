package weekday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIndexFor(t *testing.T) {
	testCases := []struct {
		label  time.Weekday
		start  WeekStart
		wanted int
	}{
		{time.Monday, MondayFirst, 0},
		{time.Sunday, MondayFirst, 6},
		{time.Saturday, MondayFirst, 5},
		{time.Sunday, SundayFirst, 0},
		{time.Monday, SundayFirst, 1},
		{time.Saturday, SundayFirst, 6},
	}
	for _, tc := range testCases {
		t.Run(tc.label.String()+"/"+tc.start.String(), func(t *testing.T) {
			assert.Equal(t, tc.wanted, IndexFor(tc.label, tc.start))
		})
	}
}

func TestIndexFor_IsBijection(t *testing.T) {
	for _, start := range []WeekStart{MondayFirst, SundayFirst} {
		seen := map[int]bool{}
		for label := time.Sunday; label <= time.Saturday; label++ {
			ordinal := IndexFor(label, start)
			assert.GreaterOrEqual(t, ordinal, 0)
			assert.Less(t, ordinal, DaysInWeek)
			assert.Equal(t, label, LabelFor(ordinal, start))
			seen[ordinal] = true
		}
		assert.Len(t, seen, DaysInWeek)
	}
}

func TestParseWeekStart(t *testing.T) {
	assert.Equal(t, SundayFirst, ParseWeekStart("Sunday"))
	assert.Equal(t, MondayFirst, ParseWeekStart("monday"))
	assert.Equal(t, MondayFirst, ParseWeekStart("anything"))
}
