package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekWindow(t *testing.T) {
	// Sunday 2024-01-14 closes the week that began Monday 2024-01-08.
	w := WeekWindow(day(2024, 1, 14))

	assert.Equal(t, day(2024, 1, 8), w.Start)
	assert.Equal(t, day(2024, 1, 14), w.End)
	assert.Equal(t, 7, w.Days())
	assert.Equal(t, time.Monday, w.Start.Weekday())
	assert.Equal(t, time.Sunday, w.End.Weekday())
}

func TestWindow_Prior(t *testing.T) {
	w := WeekWindow(day(2024, 1, 14))
	p := w.Prior()

	assert.Equal(t, day(2024, 1, 1), p.Start)
	assert.Equal(t, day(2024, 1, 7), p.End)
	assert.Equal(t, w.Days(), p.Days())
}

func TestWindow_Contains(t *testing.T) {
	w := WeekWindow(day(2024, 1, 14))

	assert.True(t, w.Contains(day(2024, 1, 8)))
	assert.True(t, w.Contains(day(2024, 1, 14)))
	assert.True(t, w.Contains(day(2024, 1, 11)))
	assert.False(t, w.Contains(day(2024, 1, 7)))
	assert.False(t, w.Contains(day(2024, 1, 15)))
}

func TestIsStreakMilestone(t *testing.T) {
	for _, n := range []int{7, 14, 21, 30, 50, 100} {
		assert.True(t, IsStreakMilestone(n), "expected %d to be a milestone", n)
	}
	for _, n := range []int{0, 1, 6, 8, 15, 29, 31, 99, 101, 365} {
		assert.False(t, IsStreakMilestone(n), "expected %d not to be a milestone", n)
	}
}

func TestMember_Location(t *testing.T) {
	m := &Member{Timezone: "America/New_York"}
	assert.Equal(t, "America/New_York", m.Location().String())

	m = &Member{Timezone: ""}
	assert.Equal(t, time.UTC, m.Location())

	m = &Member{Timezone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, m.Location())
}
