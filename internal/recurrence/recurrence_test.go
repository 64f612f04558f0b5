package recurrence

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinclairt/schedulable/internal/entity"
)

// Friday 15 March 2024, 10:30 UTC.
var ref = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func at(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
}

func assertTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s, got %s", want, got)
}

func mustCalc(t *testing.T, s *entity.Schedule, opts ...Option) *Calculator {
	t.Helper()
	c, err := ForSchedule(s, opts...)
	require.NoError(t, err)
	return c
}

func minutely() *entity.Schedule { return &entity.Schedule{Category: entity.CategoryMinutely} }
func hourly(mi int) *entity.Schedule {
	return &entity.Schedule{Category: entity.CategoryHourly, Minute: entity.Int(mi)}
}
func daily(h, mi int) *entity.Schedule {
	return &entity.Schedule{Category: entity.CategoryDaily, Hour: entity.Int(h), Minute: entity.Int(mi)}
}
func weekly(dow, h, mi int) *entity.Schedule {
	return &entity.Schedule{Category: entity.CategoryWeekly, DayOfWeek: entity.Int(dow), Hour: entity.Int(h), Minute: entity.Int(mi)}
}
func monthly(dom, h, mi int) *entity.Schedule {
	return &entity.Schedule{Category: entity.CategoryMonthly, DayOfMonth: entity.Int(dom), Hour: entity.Int(h), Minute: entity.Int(mi)}
}
func annually(mo, dom, h, mi int) *entity.Schedule {
	return &entity.Schedule{Category: entity.CategoryAnnually, MonthOfYear: entity.Int(mo), DayOfMonth: entity.Int(dom), Hour: entity.Int(h), Minute: entity.Int(mi)}
}
func adhoc(y, mo, dom, h, mi int) *entity.Schedule {
	return &entity.Schedule{Category: entity.CategoryAdhoc, Year: entity.Int(y), MonthOfYear: entity.Int(mo), DayOfMonth: entity.Int(dom), Hour: entity.Int(h), Minute: entity.Int(mi)}
}

func TestNextAndPrevious(t *testing.T) {
	tests := []struct {
		name     string
		schedule *entity.Schedule
		ref      time.Time
		skip     int
		next     time.Time
		previous time.Time
	}{
		{"minutely", minutely(), ref, 0, at(2024, 3, 15, 10, 31), at(2024, 3, 15, 10, 29)},
		{"minutely mid minute", minutely(), ref.Add(30 * time.Second), 0, at(2024, 3, 15, 10, 31), at(2024, 3, 15, 10, 30)},
		{"hourly", hourly(0), ref, 0, at(2024, 3, 15, 11, 0), at(2024, 3, 15, 10, 0)},
		{"hourly skip", hourly(0), ref, 2, at(2024, 3, 15, 13, 0), at(2024, 3, 15, 8, 0)},
		{"daily", daily(9, 15), ref, 0, at(2024, 3, 16, 9, 15), at(2024, 3, 15, 9, 15)},
		{"weekly monday", weekly(1, 8, 0), ref, 0, at(2024, 3, 18, 8, 0), at(2024, 3, 11, 8, 0)},
		{"monthly 31st", monthly(31, 0, 0), ref, 0, at(2024, 3, 31, 0, 0), at(2024, 1, 31, 0, 0)},
		{"monthly 31st skips short months", monthly(31, 0, 0), ref, 1, at(2024, 5, 31, 0, 0), at(2023, 12, 31, 0, 0)},
		{"leap day", annually(2, 29, 12, 0), ref, 0, at(2028, 2, 29, 12, 0), at(2024, 2, 29, 12, 0)},
		{"annually", annually(1, 1, 0, 0), ref, 0, at(2025, 1, 1, 0, 0), at(2024, 1, 1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCalc(t, tt.schedule)

			next, err := c.Next(tt.ref, tt.skip)
			require.NoError(t, err)
			assertTime(t, tt.next, next)

			prev, err := c.Previous(tt.ref, tt.skip)
			require.NoError(t, err)
			assertTime(t, tt.previous, prev)
		})
	}
}

func TestLastDayOfMonth(t *testing.T) {
	s := &entity.Schedule{Category: entity.CategoryMonthly, IsLastDayOfMonth: true, Hour: entity.Int(23), Minute: entity.Int(0)}
	c := mustCalc(t, s)

	next, err := c.Next(at(2024, 2, 10, 0, 0), 0)
	require.NoError(t, err)
	assertTime(t, at(2024, 2, 29, 23, 0), next)

	next, err = c.Next(at(2024, 2, 10, 0, 0), 1)
	require.NoError(t, err)
	assertTime(t, at(2024, 3, 31, 23, 0), next)

	next, err = c.Next(at(2023, 2, 10, 0, 0), 0)
	require.NoError(t, err)
	assertTime(t, at(2023, 2, 28, 23, 0), next)

	prev, err := c.Previous(at(2024, 5, 15, 0, 0), 0)
	require.NoError(t, err)
	assertTime(t, at(2024, 4, 30, 23, 0), prev)
}

func TestAdhocExhausts(t *testing.T) {
	c := mustCalc(t, adhoc(2030, 1, 2, 3, 4))

	next, err := c.Next(ref, 0)
	require.NoError(t, err)
	assertTime(t, at(2030, 1, 2, 3, 4), next)

	_, err = c.Next(ref, 1)
	assert.ErrorIs(t, err, ErrNoOccurrence)

	_, err = c.Previous(ref, 0)
	assert.ErrorIs(t, err, ErrNoOccurrence)

	prev, err := c.Previous(at(2031, 1, 1, 0, 0), 0)
	require.NoError(t, err)
	assertTime(t, at(2030, 1, 2, 3, 4), prev)
}

func TestIsDue(t *testing.T) {
	c := mustCalc(t, hourly(0))
	assert.True(t, c.IsDue(at(2024, 3, 15, 11, 0)))
	assert.True(t, c.IsDue(at(2024, 3, 15, 11, 0).Add(45*time.Second)))
	assert.False(t, c.IsDue(at(2024, 3, 15, 11, 1)))

	w := mustCalc(t, weekly(5, 10, 30))
	assert.True(t, w.IsDue(ref))
	assert.False(t, w.IsDue(ref.AddDate(0, 0, 1)))
}

func TestNextNAndPreviousN(t *testing.T) {
	c := mustCalc(t, daily(9, 15), WithClock(func() time.Time { return ref }))

	next, err := c.NextN(3)
	require.NoError(t, err)
	require.Len(t, next, 3)
	assertTime(t, at(2024, 3, 16, 9, 15), next[0])
	assertTime(t, at(2024, 3, 17, 9, 15), next[1])
	assertTime(t, at(2024, 3, 18, 9, 15), next[2])

	prev, err := c.PreviousN(2)
	require.NoError(t, err)
	require.Len(t, prev, 2)
	assertTime(t, at(2024, 3, 15, 9, 15), prev[0])
	assertTime(t, at(2024, 3, 14, 9, 15), prev[1])

	empty, err := c.NextN(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestZeroReferenceUsesClock(t *testing.T) {
	c := mustCalc(t, hourly(0), WithClock(func() time.Time { return ref }))
	next, err := c.Next(time.Time{}, 0)
	require.NoError(t, err)
	assertTime(t, at(2024, 3, 15, 11, 0), next)
}

func TestBetween(t *testing.T) {
	c := mustCalc(t, hourly(0))

	got, err := c.Between(ref, at(2024, 3, 15, 14, 0), 100)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assertTime(t, at(2024, 3, 15, 11, 0), got[0])
	assertTime(t, at(2024, 3, 15, 14, 0), got[3])

	got, err = c.Between(ref, at(2024, 3, 15, 14, 0), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = c.Between(at(2024, 3, 15, 11, 0), at(2024, 3, 15, 11, 0), 10)
	require.NoError(t, err)
	assert.Len(t, got, 1, "both bounds are inclusive")

	got, err = mustCalc(t, monthly(1, 0, 0)).Between(ref, ref.AddDate(1, 0, 0), 100)
	require.NoError(t, err)
	assert.Len(t, got, 12)

	_, err = c.Between(ref, ref.Add(-time.Hour), 10)
	assert.Error(t, err)
}

func TestMonotonicBracketing(t *testing.T) {
	schedules := []*entity.Schedule{
		minutely(), hourly(7), daily(0, 0), daily(23, 59), weekly(0, 12, 0), weekly(6, 23, 59),
		monthly(1, 0, 0), monthly(31, 6, 30), annually(2, 29, 0, 0), annually(12, 31, 23, 59),
	}
	refs := []time.Time{
		ref,
		at(2024, 2, 29, 0, 0),
		at(2023, 12, 31, 23, 59),
		at(2024, 1, 1, 0, 0).Add(17 * time.Second),
	}
	for _, s := range schedules {
		c := mustCalc(t, s)
		for _, r := range refs {
			next, err := c.Next(r, 0)
			require.NoError(t, err)
			prev, err := c.Previous(next, 0)
			require.NoError(t, err)

			assert.Truef(t, next.After(r), "%s: next %s not after %s", s.CompiledExpression(), next, r)
			assert.Falsef(t, prev.After(r), "%s: previous(next) %s after %s", s.CompiledExpression(), prev, r)
			assert.Truef(t, c.IsDue(next), "%s: next %s is not due", s.CompiledExpression(), next)
			assert.Truef(t, c.IsDue(prev), "%s: previous %s is not due", s.CompiledExpression(), prev)
		}
	}
}

func TestWithLocation(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	c := mustCalc(t, daily(9, 0), WithLocation(jakarta))
	next, err := c.Next(at(2024, 3, 15, 0, 0), 0)
	require.NoError(t, err)
	assertTime(t, at(2024, 3, 15, 2, 0), next)
	assert.Equal(t, jakarta, next.Location())
}

func TestSkipsDaylightSavingGap(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	c := mustCalc(t, daily(2, 30))
	next, err := c.Next(time.Date(2024, 3, 9, 12, 0, 0, 0, ny), 0)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 11, 2, 30, 0, 0, ny).Equal(next), "02:30 does not exist on 10 March")
}

func TestRepeatedDaylightSavingHour(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// On 3 November 2024 New York shows 01:00-01:59 twice: EDT (05:xx UTC), then EST (06:xx UTC).
	utc := func(h, mi int) time.Time { return time.Date(2024, 11, 3, h, mi, 0, 0, time.UTC) }
	edt := func(mi int) time.Time { return utc(5, mi).In(ny) }
	est := func(mi int) time.Time { return utc(6, mi).In(ny) }

	tests := []struct {
		name     string
		schedule *entity.Schedule
		ref      time.Time
		next     time.Time
		previous time.Time
	}{
		{"minutely in second pass", minutely(), est(30), utc(6, 31), utc(6, 29)},
		{"minutely across the switch", minutely(), est(0), utc(6, 1), utc(5, 59)},
		{"hourly in second pass", hourly(45), est(30), utc(6, 45), utc(5, 45)},
		{"hourly from first pass", hourly(45), edt(50), utc(6, 45), utc(5, 45)},
		{"hourly before the switch", hourly(45), edt(10), utc(5, 45), utc(4, 45)},
		{"daily inside the hour", daily(1, 30), edt(40), utc(6, 30), utc(5, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCalc(t, tt.schedule, WithLocation(ny))

			next, err := c.Next(tt.ref, 0)
			require.NoError(t, err)
			assertTime(t, tt.next, next)
			assert.True(t, next.After(tt.ref))

			previous, err := c.Previous(tt.ref, 0)
			require.NoError(t, err)
			assertTime(t, tt.previous, previous)
			assert.True(t, previous.Before(tt.ref))
		})
	}

	t.Run("between lists both passes", func(t *testing.T) {
		c := mustCalc(t, hourly(45), WithLocation(ny))
		got, err := c.Between(utc(4, 0), utc(8, 0), 10)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i, want := range []time.Time{utc(4, 45), utc(5, 45), utc(6, 45), utc(7, 45)} {
			assertTime(t, want, got[i])
		}
	})

	t.Run("next run is never already due", func(t *testing.T) {
		now := est(30)
		next, err := NextRun(minutely(), now, WithLocation(ny))
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.True(t, next.After(now), "next run %s not after %s", next, now)

		marked, err := MarkRun(hourly(45), now, WithLocation(ny))
		require.NoError(t, err)
		require.NotNil(t, marked.NextRunAt)
		assertTime(t, utc(6, 45), *marked.NextRunAt)
	})
}

func TestParseExpression(t *testing.T) {
	valid := []string{
		"* * * * *",
		"0 0 1 1 *",
		"0 0 30 4 *",
		"0 0 29 2 *",
		"0 0 29 2 * 2024",
		"0 0 L * *",
		"0 0 31,L 2 *",
		"0 0 31 2 1",
		"5 4 3 2 * 2030",
	}
	for _, expr := range valid {
		_, err := ParseExpression(expr)
		assert.NoErrorf(t, err, "expected %q to parse", expr)
	}

	invalid := []string{
		"",
		"* * *",
		"* * * * * * *",
		"60 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 7",
		"*/5 * * * *",
		"1,2 * * * *",
		"1-5 * * * *",
		"0 0 31 2 *",
		"0 0 30 2 *",
		"0 0 31 4 *",
		"0 0 29 2 * 2023",
	}
	for _, expr := range invalid {
		_, err := ParseExpression(expr)
		assert.ErrorIsf(t, err, ErrInvalidExpression, "expected %q to be rejected", expr)
	}
}

func TestCompileRejectsImpossibleSchedule(t *testing.T) {
	_, err := Compile(annually(2, 31, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidExpression)

	_, err = Compile(adhoc(2023, 2, 29, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidExpression)

	_, err = Compile(&entity.Schedule{Minute: entity.Int(-1)})
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestMatcherCache(t *testing.T) {
	FlushCache()
	a, err := ParseExpression("15 3 * * *")
	require.NoError(t, err)
	b, err := ParseExpression("15 3 * * *")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, CachedExpressions())
	assert.Equal(t, "15 3 * * * *", a.String())
}

func TestNextRunRespectsWindow(t *testing.T) {
	s := hourly(0)

	next, err := NextRun(s, ref)
	require.NoError(t, err)
	require.NotNil(t, next)
	assertTime(t, at(2024, 3, 15, 11, 0), *next)

	starts := at(2024, 4, 1, 0, 0)
	s.StartsAt = &starts
	next, err = NextRun(s, ref)
	require.NoError(t, err)
	require.NotNil(t, next)
	assertTime(t, starts, *next)

	s.StartsAt = nil
	expires := at(2024, 3, 15, 10, 45)
	s.ExpiresAt = &expires
	next, err = NextRun(s, ref)
	require.NoError(t, err)
	assert.Nil(t, next)

	next, err = NextRun(adhoc(2020, 1, 1, 0, 0), ref)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestMarkRun(t *testing.T) {
	s := daily(9, 15)
	s.ID = 3

	out, err := MarkRun(s, ref)
	require.NoError(t, err)

	require.NotNil(t, out.LastRunAt)
	require.NotNil(t, out.NextRunAt)
	assertTime(t, ref, *out.LastRunAt)
	assertTime(t, at(2024, 3, 16, 9, 15), *out.NextRunAt)
	assert.True(t, out.NextRunAt.After(*out.LastRunAt))
	assert.Nil(t, s.LastRunAt, "input snapshot must not change")
	assert.Equal(t, uint(3), out.ID)
}
