package recurrence

import (
	"fmt"
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/pkg/utils"
)

// horizonYears bounds every search. Any satisfiable matcher repeats well within it.
const horizonYears = 100

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// WithLocation evaluates calendar fields in loc instead of the reference instant's location.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		c.loc = loc
	}
}

// Calculator answers next/previous/enumeration questions for one Matcher.
type Calculator struct {
	matcher *Matcher
	now     func() time.Time
	loc     *time.Location
}

// NewCalculator builds a calculator for m.
func NewCalculator(m *Matcher, opts ...Option) *Calculator {
	c := &Calculator{matcher: m, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForSchedule compiles s and wraps the result in a Calculator.
func ForSchedule(s *entity.Schedule, opts ...Option) (*Calculator, error) {
	m, err := Compile(s)
	if err != nil {
		return nil, err
	}
	return NewCalculator(m, opts...), nil
}

// Matcher returns the compiled predicate.
func (c *Calculator) Matcher() *Matcher {
	return c.matcher
}

// Next returns the smallest occurrence strictly after ref, skipping skip further matches.
// A zero ref means now.
func (c *Calculator) Next(ref time.Time, skip int) (time.Time, error) {
	t := c.reference(ref)
	for i := 0; i <= max(skip, 0); i++ {
		next, err := c.after(t)
		if err != nil {
			return time.Time{}, err
		}
		t = next
	}
	return t, nil
}

// Previous returns the largest occurrence strictly before ref, skipping skip further matches.
// A zero ref means now.
func (c *Calculator) Previous(ref time.Time, skip int) (time.Time, error) {
	t := c.reference(ref)
	for i := 0; i <= max(skip, 0); i++ {
		prev, err := c.before(t)
		if err != nil {
			return time.Time{}, err
		}
		t = prev
	}
	return t, nil
}

// NextN returns the next count occurrences from now in ascending order.
func (c *Calculator) NextN(count int) ([]time.Time, error) {
	out := make([]time.Time, 0, max(count, 0))
	t := c.reference(time.Time{})
	for len(out) < count {
		next, err := c.after(t)
		if err != nil {
			return out, err
		}
		out = append(out, next)
		t = next
	}
	return out, nil
}

// PreviousN returns the previous count occurrences, closest to now first.
func (c *Calculator) PreviousN(count int) ([]time.Time, error) {
	out := make([]time.Time, 0, max(count, 0))
	t := c.reference(time.Time{})
	for len(out) < count {
		prev, err := c.before(t)
		if err != nil {
			return out, err
		}
		out = append(out, prev)
		t = prev
	}
	return out, nil
}

// IsDue reports whether t is itself an occurrence.
func (c *Calculator) IsDue(t time.Time) bool {
	return c.matcher.Matches(c.reference(t))
}

// Between lists the occurrences inside [from, to], at most limit of them.
func (c *Calculator) Between(from, to time.Time, limit int) ([]time.Time, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s is before %s", to, from)
	}

	var out []time.Time
	from = c.reference(from)
	t, ok := c.matcher.forward(ceilMinute(from), horizonFrom(from))
	for ok && !t.After(to) && len(out) < limit {
		out = append(out, t)
		t, ok = c.matcher.forward(t.Add(time.Minute), horizonFrom(from))
	}
	return out, nil
}

func (c *Calculator) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		ref = c.now()
	}
	if c.loc != nil {
		ref = ref.In(c.loc)
	}
	return ref
}

// after finds the first occurrence strictly after ref.
func (c *Calculator) after(ref time.Time) (time.Time, error) {
	start := utils.TruncateMinute(ref).Add(time.Minute)
	if t, ok := c.matcher.forward(start, horizonFrom(ref)); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: next of %q after %s", ErrNoOccurrence, c.matcher, ref)
}

// before finds the last occurrence strictly before ref.
func (c *Calculator) before(ref time.Time) (time.Time, error) {
	start := utils.TruncateMinute(ref)
	if start.Equal(ref) {
		start = start.Add(-time.Minute)
	}
	if t, ok := c.matcher.backward(start, ref.AddDate(-horizonYears, 0, 0)); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: previous of %q before %s", ErrNoOccurrence, c.matcher, ref)
}

func horizonFrom(t time.Time) time.Time {
	return t.AddDate(horizonYears, 0, 0)
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

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// forward returns the first occurrence at or after start, walking day by day and
// jumping whole months or years when those components cannot match.
func (m *Matcher) forward(start, limit time.Time) (time.Time, bool) {
	loc := start.Location()
	day := dateOf(start)

	for !day.After(limit) {
		if m.year != unset {
			if day.Year() > m.year {
				return time.Time{}, false
			}
			if day.Year() < m.year {
				day = time.Date(m.year, time.January, 1, 0, 0, 0, 0, loc)
				continue
			}
		}
		if m.month != unset && int(day.Month()) != m.month {
			year := day.Year()
			if int(day.Month()) > m.month {
				year++
			}
			day = time.Date(year, time.Month(m.month), 1, 0, 0, 0, 0, loc)
			continue
		}

		if m.dayMatches(day) {
			hour, minute := 0, 0
			if sameDate(day, start) {
				hour, minute = lowerBound(start)
			}
			if t, ok := m.firstOn(day, hour, minute, start); ok {
				return t, true
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// backward returns the last occurrence at or before start.
func (m *Matcher) backward(start, limit time.Time) (time.Time, bool) {
	loc := start.Location()
	day := dateOf(start)

	for !day.Before(dateOf(limit)) {
		if m.year != unset {
			if day.Year() < m.year {
				return time.Time{}, false
			}
			if day.Year() > m.year {
				day = time.Date(m.year, time.December, 31, 0, 0, 0, 0, loc)
				continue
			}
		}
		if m.month != unset && int(day.Month()) != m.month {
			year := day.Year()
			if int(day.Month()) < m.month {
				year--
			}
			day = time.Date(year, time.Month(m.month), utils.DaysIn(year, time.Month(m.month)), 0, 0, 0, 0, loc)
			continue
		}

		if m.dayMatches(day) {
			hour, minute := 23, 59
			if sameDate(day, start) {
				hour, minute = upperBound(start)
			}
			if t, ok := m.lastOn(day, hour, minute, start); ok {
				return t, true
			}
		}
		day = day.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}

// maxShift is the largest clock change of a DST transition. Inside a repeated
// hour an instant after start can show a wall clock up to maxShift earlier.
const maxShift = time.Hour

// lowerBound is the earliest wall clock on start's date that can belong to an
// instant at or after start.
func lowerBound(start time.Time) (int, int) {
	t := start.Add(-maxShift)
	if !sameDate(t, start) {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// upperBound is the latest wall clock on start's date that can belong to an
// instant at or before start.
func upperBound(start time.Time) (int, int) {
	t := start.Add(maxShift)
	if !sameDate(t, start) {
		return 23, 59
	}
	return t.Hour(), t.Minute()
}

// firstOn finds the earliest matching instant on day that is not before
// notBefore, scanning wall clocks from hour:minute.
func (m *Matcher) firstOn(day time.Time, hour, minute int, notBefore time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for h := hour; h < 24; h++ {
		if m.hour != unset && h != m.hour {
			continue
		}
		from := 0
		if h == hour {
			from = minute
		}
		for mi := from; mi < 60; mi++ {
			if m.minute != unset && mi != m.minute {
				continue
			}
			instants := wallClock(day, h, mi)
			if len(instants) == 0 {
				continue
			}
			// First passes grow with the wall clock, nothing later can beat best.
			if found && instants[0].After(best) {
				return best, true
			}
			for _, t := range instants {
				if !t.Before(notBefore) && (!found || t.Before(best)) {
					best, found = t, true
				}
			}
		}
	}
	return best, found
}

// lastOn finds the latest matching instant on day that is not after notAfter,
// scanning wall clocks back from hour:minute.
func (m *Matcher) lastOn(day time.Time, hour, minute int, notAfter time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for h := hour; h >= 0; h-- {
		if m.hour != unset && h != m.hour {
			continue
		}
		from := 59
		if h == hour {
			from = minute
		}
		for mi := from; mi >= 0; mi-- {
			if m.minute != unset && mi != m.minute {
				continue
			}
			instants := wallClock(day, h, mi)
			if len(instants) == 0 {
				continue
			}
			// Last passes shrink with the wall clock, nothing earlier can beat best.
			if found && instants[len(instants)-1].Before(best) {
				return best, true
			}
			for _, t := range instants {
				if !t.After(notAfter) && (!found || t.After(best)) {
					best, found = t, true
				}
			}
		}
	}
	return best, found
}

// wallClock lists, in order, the instants that show h:mi on day. A time skipped
// by a DST gap has none, a time repeated when clocks fall back has two.
func wallClock(day time.Time, h, mi int) []time.Time {
	t := time.Date(day.Year(), day.Month(), day.Day(), h, mi, 0, 0, day.Location())
	var out []time.Time
	for _, d := range []time.Duration{-maxShift, -maxShift / 2, 0, maxShift / 2, maxShift} {
		c := t.Add(d)
		if c.Hour() == h && c.Minute() == mi && sameDate(c, day) {
			out = append(out, c)
		}
	}
	return out
}
