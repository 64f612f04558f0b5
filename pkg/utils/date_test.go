package utils

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2024, time.January))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 28, DaysIn(1900, time.February))
	assert.Equal(t, 29, DaysIn(2000, time.February))
	assert.Equal(t, 30, DaysIn(2024, time.April))
	assert.Equal(t, 31, DaysIn(2024, time.December))
}

func TestIsLastDayOfMonth(t *testing.T) {
	assert.True(t, IsLastDayOfMonth(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)))
	assert.False(t, IsLastDayOfMonth(time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)))
	assert.True(t, IsLastDayOfMonth(time.Date(2023, 2, 28, 10, 0, 0, 0, time.UTC)))
	assert.True(t, IsLastDayOfMonth(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestTruncateMinute(t *testing.T) {
	in := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC), TruncateMinute(in))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 01:30:45 EST, the second pass of the repeated hour.
	second := time.Date(2024, 11, 3, 6, 30, 45, 0, time.UTC).In(ny)
	assert.True(t, time.Date(2024, 11, 3, 6, 30, 0, 0, time.UTC).Equal(TruncateMinute(second)))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Mars/Olympus_Mons")
	assert.Error(t, err)
}
