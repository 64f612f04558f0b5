package predicate

import (
	"time"

	"github.com/sinclairt/schedulable/pkg/utils"
)

// Walk limits. Reaching one means every value of that component occurs.
const (
	minuteWalk = 60
	hourWalk   = 24
	dayWalk    = 62
	monthWalk  = 12
)

// coverage is the set of values each calendar component takes over the
// minute-aligned instants of an interval. A nil slice means every value.
type coverage struct {
	empty    bool
	minutes  []int
	hours    []int
	weekdays []int
	days     []int
	months   []int
	lastDay  bool
	fromYear int
	toYear   int
	open     bool
}

func cover(from, to time.Time) coverage {
	start := ceilMinute(from)
	if to.IsZero() {
		return coverage{lastDay: true, fromYear: start.Year(), open: true}
	}
	to = to.In(start.Location())
	if start.After(to) {
		return coverage{empty: true}
	}

	c := coverage{fromYear: start.Year(), toYear: to.Year()}
	c.minutes = walkMinutes(start, to)
	c.hours = walkHours(start, to)
	c.weekdays, c.days, c.lastDay = walkDays(start, to)
	c.months = walkMonths(start, to)
	return c
}

func walkMinutes(start, to time.Time) []int {
	var out []int
	t := start
	for i := 0; i < minuteWalk; i++ {
		if t.After(to) {
			return out
		}
		out = append(out, t.Minute())
		t = t.Add(time.Minute)
	}
	return nil
}

func walkHours(start, to time.Time) []int {
	seen := make(map[int]bool)
	var out []int
	t := time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), 0, 0, 0, start.Location())
	for i := 0; i < hourWalk; i++ {
		if i > 0 && t.After(to) {
			return out
		}
		if h := t.Hour(); !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
		t = t.Add(time.Hour)
	}
	return nil
}

func walkDays(start, to time.Time) (weekdays, days []int, lastDay bool) {
	seenDay := make(map[int]bool)
	end := dateOf(to)
	d := dateOf(start)
	for i := 0; i < dayWalk; i++ {
		if d.After(end) {
			if i < 7 {
				return weekdays, days, lastDay
			}
			return nil, days, lastDay
		}
		if i < 7 {
			weekdays = append(weekdays, int(d.Weekday()))
		}
		if !seenDay[d.Day()] {
			seenDay[d.Day()] = true
			days = append(days, d.Day())
		}
		lastDay = lastDay || utils.IsLastDayOfMonth(d)
		d = d.AddDate(0, 0, 1)
	}
	return nil, nil, true
}

func walkMonths(start, to time.Time) []int {
	var out []int
	m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, to.Location())
	for i := 0; i < monthWalk; i++ {
		if m.After(end) {
			return out
		}
		out = append(out, int(m.Month()))
		m = m.AddDate(0, 1, 0)
	}
	return nil
}

func ceilMinute(t time.Time) time.Time {
	trunc := utils.TruncateMinute(t)
	if trunc.Before(t) {
		return trunc.Add(time.Minute)
	}
	return trunc
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
