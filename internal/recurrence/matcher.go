package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/pkg/utils"
)

const unset = -1

// Matcher is a compiled occurrence predicate. Each calendar component is either
// unset (wildcard) or a single required value. Matchers are immutable.
type Matcher struct {
	minute     int
	hour       int
	dayOfMonth int
	month      int
	dayOfWeek  int
	year       int
	lastDay    bool
	expr       string
}

// Compile turns a schedule's fields into a Matcher.
func Compile(s *entity.Schedule) (*Matcher, error) {
	return ParseExpression(s.CompiledExpression())
}

// ParseExpression parses "minute hour day_of_month month_of_year day_of_week [year]".
// Each field is "*" or an integer; the day-of-month slot also accepts "L" and "N,L".
func ParseExpression(expr string) (*Matcher, error) {
	expr = strings.TrimSpace(expr)
	if m, ok := cached(expr); ok {
		return m, nil
	}

	parts := strings.Fields(expr)
	if len(parts) != 5 && len(parts) != 6 {
		return nil, fmt.Errorf("%w: %q must have 5 or 6 fields, got %d", ErrInvalidExpression, expr, len(parts))
	}
	if len(parts) == 5 {
		parts = append(parts, entity.Wildcard)
	}

	m := &Matcher{expr: strings.Join(parts, " ")}
	var err error
	if m.minute, err = parseValue(parts[0], entity.FieldMinute); err != nil {
		return nil, err
	}
	if m.hour, err = parseValue(parts[1], entity.FieldHour); err != nil {
		return nil, err
	}
	if m.dayOfMonth, m.lastDay, err = parseDayOfMonth(parts[2]); err != nil {
		return nil, err
	}
	if m.month, err = parseValue(parts[3], entity.FieldMonthOfYear); err != nil {
		return nil, err
	}
	if m.dayOfWeek, err = parseValue(parts[4], entity.FieldDayOfWeek); err != nil {
		return nil, err
	}
	if m.year, err = parseValue(parts[5], entity.FieldYear); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	store(expr, m)
	return m, nil
}

func parseValue(token string, f entity.Field) (int, error) {
	if token == entity.Wildcard {
		return unset, nil
	}
	v, err := strconv.Atoi(token)
	if err != nil {
		return unset, fmt.Errorf("%w: %s value %q is not an integer", ErrInvalidExpression, f, token)
	}
	if !f.InRange(v) {
		min, max := f.Bounds()
		return unset, fmt.Errorf("%w: %s value %d outside %d-%d", ErrInvalidExpression, f, v, min, max)
	}
	return v, nil
}

func parseDayOfMonth(token string) (int, bool, error) {
	switch {
	case token == entity.LastDayMarker:
		return unset, true, nil
	case strings.HasSuffix(token, ","+entity.LastDayMarker):
		v, err := parseValue(strings.TrimSuffix(token, ","+entity.LastDayMarker), entity.FieldDayOfMonth)
		if err != nil {
			return unset, false, err
		}
		if v == unset {
			return unset, true, nil
		}
		return v, true, nil
	}
	v, err := parseValue(token, entity.FieldDayOfMonth)
	return v, false, err
}

// validate rejects combinations that never land on a real calendar date.
func (m *Matcher) validate() error {
	// Another day branch can still fire, so a missing day-of-month is not fatal.
	if m.dayOfMonth == unset || m.lastDay || m.dayOfWeek != unset || m.month == unset {
		return nil
	}

	max := 29
	if m.year != unset {
		max = utils.DaysIn(m.year, time.Month(m.month))
	} else if time.Month(m.month) != time.February {
		max = utils.DaysIn(2000, time.Month(m.month))
	}
	if m.dayOfMonth > max {
		if m.year != unset {
			return fmt.Errorf("%w: day %d never occurs in %s %d", ErrInvalidExpression, m.dayOfMonth, time.Month(m.month), m.year)
		}
		return fmt.Errorf("%w: day %d never occurs in %s", ErrInvalidExpression, m.dayOfMonth, time.Month(m.month))
	}
	return nil
}

// String returns the normalised six-field expression.
func (m *Matcher) String() string {
	return m.expr
}

// Matches reports whether t is an occurrence, at minute resolution.
func (m *Matcher) Matches(t time.Time) bool {
	return m.dateMatches(t) && m.clockMatches(t.Hour(), t.Minute())
}

func (m *Matcher) dateMatches(t time.Time) bool {
	if m.year != unset && t.Year() != m.year {
		return false
	}
	if m.month != unset && int(t.Month()) != m.month {
		return false
	}
	return m.dayMatches(t)
}

// dayMatches follows cron semantics: when both the day-of-month slot and the
// day-of-week are restricted, either one is enough.
func (m *Matcher) dayMatches(t time.Time) bool {
	domRestricted := m.dayOfMonth != unset || m.lastDay
	dowRestricted := m.dayOfWeek != unset

	domOK := (m.dayOfMonth != unset && t.Day() == m.dayOfMonth) || (m.lastDay && utils.IsLastDayOfMonth(t))
	dowOK := dowRestricted && int(t.Weekday()) == m.dayOfWeek

	switch {
	case domRestricted && dowRestricted:
		return domOK || dowOK
	case domRestricted:
		return domOK
	case dowRestricted:
		return dowOK
	}
	return true
}

func (m *Matcher) clockMatches(hour, minute int) bool {
	return (m.hour == unset || hour == m.hour) && (m.minute == unset || minute == m.minute)
}
