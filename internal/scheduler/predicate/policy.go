package predicate

import (
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/pkg/utils"
)

// fieldPolicy is the two-branch rule every calendar field follows: either the
// field is set, satisfies match and matters for the category, or the field is
// absent and the category ignores it.
func fieldPolicy(f entity.Field, match Predicate) Predicate {
	col := ColumnOf(f)
	return Or{
		And{NotNull(col), match, categoryIn(entity.RelevantCategories(f))},
		And{IsNull(col), categoryIn(entity.IrrelevantCategories(f))},
	}
}

func categoryIn(categories []entity.Category) Predicate {
	switch len(categories) {
	case 0:
		return False
	case 1:
		return Eq(ColumnCategory, categories[0])
	}
	return In(ColumnCategory, categories)
}

// valuesIn restricts col to values; nil means any value.
func valuesIn(col Column, values []int) Predicate {
	switch {
	case values == nil:
		return True
	case len(values) == 1:
		return Eq(col, values[0])
	}
	return In(col, values)
}

// CategoryIs matches schedules of category c.
func CategoryIs(c entity.Category) Predicate {
	return Eq(ColumnCategory, c)
}

// Minute matches schedules compatible with minute m.
func Minute(m int) Predicate {
	return fieldPolicy(entity.FieldMinute, Eq(ColumnMinute, m))
}

// Hour matches schedules compatible with hour h.
func Hour(h int) Predicate {
	return fieldPolicy(entity.FieldHour, Eq(ColumnHour, h))
}

// DayOfWeek matches schedules compatible with weekday d (0 = Sunday).
func DayOfWeek(d time.Weekday) Predicate {
	return fieldPolicy(entity.FieldDayOfWeek, Eq(ColumnDayOfWeek, int(d)))
}

// DayOfMonth matches schedules compatible with day-of-month d.
func DayOfMonth(d int) Predicate {
	return fieldPolicy(entity.FieldDayOfMonth, Eq(ColumnDayOfMonth, d))
}

// LastDayOfMonth applies the last-day marker rule. It only constrains
// anything when t is the last day of its month.
func LastDayOfMonth(t time.Time) Predicate {
	if !utils.IsLastDayOfMonth(t) {
		return True
	}
	return Or{
		And{Eq(ColumnLastDayOfMonth, true), categoryIn(lastDayCategories(true))},
		And{Eq(ColumnLastDayOfMonth, false), categoryIn(lastDayCategories(false))},
	}
}

func lastDayCategories(relevant bool) []entity.Category {
	var out []entity.Category
	for _, c := range entity.Categories {
		if c.RelevantLastDayOfMonth() == relevant {
			out = append(out, c)
		}
	}
	return out
}

// Day matches schedules that may fire on t's calendar day: by weekday, by
// day-of-month, by the last-day marker, or because the category has no day
// constraint at all.
func Day(t time.Time) Predicate {
	return dayPolicy([]int{int(t.Weekday())}, []int{t.Day()}, utils.IsLastDayOfMonth(t))
}

func dayPolicy(weekdays, days []int, lastDay bool) Predicate {
	out := Or{
		And{NotNull(ColumnDayOfWeek), valuesIn(ColumnDayOfWeek, weekdays), categoryIn(entity.RelevantCategories(entity.FieldDayOfWeek))},
		And{NotNull(ColumnDayOfMonth), valuesIn(ColumnDayOfMonth, days), categoryIn(entity.RelevantCategories(entity.FieldDayOfMonth))},
	}
	if lastDay {
		out = append(out, And{Eq(ColumnLastDayOfMonth, true), categoryIn(lastDayCategories(true))})
	}
	return append(out, And{
		IsNull(ColumnDayOfWeek),
		IsNull(ColumnDayOfMonth),
		Eq(ColumnLastDayOfMonth, false),
		categoryIn(dayless()),
	})
}

// dayless lists the categories for which neither day field matters.
func dayless() []entity.Category {
	var out []entity.Category
	for _, c := range entity.Categories {
		if !c.Relevant(entity.FieldDayOfWeek) && !c.Relevant(entity.FieldDayOfMonth) {
			out = append(out, c)
		}
	}
	return out
}

// Month matches schedules compatible with month m.
func Month(m time.Month) Predicate {
	return fieldPolicy(entity.FieldMonthOfYear, Eq(ColumnMonthOfYear, int(m)))
}

// Year matches schedules compatible with year y.
func Year(y int) Predicate {
	return fieldPolicy(entity.FieldYear, Eq(ColumnYear, y))
}

// Active matches schedules whose activity window contains t.
func Active(t time.Time) Predicate {
	return And{
		Or{IsNull(ColumnStartsAt), Lte(ColumnStartsAt, t)},
		Or{IsNull(ColumnExpiresAt), Gte(ColumnExpiresAt, t)},
	}
}

// Expired matches schedules whose window closed at or before t.
func Expired(t time.Time) Predicate {
	return And{NotNull(ColumnExpiresAt), Lte(ColumnExpiresAt, t)}
}

// NextRunDue matches schedules whose cached next run is at or before t.
func NextRunDue(t time.Time) Predicate {
	return And{NotNull(ColumnNextRunAt), Lte(ColumnNextRunAt, t)}
}

// DueOn conjoins the minute, hour, day, month and year policies for t, and the
// activity window when active is set.
func DueOn(t time.Time, active bool) Predicate {
	out := And{
		Minute(t.Minute()),
		Hour(t.Hour()),
		Day(t),
		Month(t.Month()),
		Year(t.Year()),
	}
	if active {
		out = append(out, Active(t))
	}
	return out
}

// IsNow is DueOn(now, true).
func IsNow(now time.Time) Predicate {
	return DueOn(now, true)
}

// MinuteBetween matches schedules whose minute occurs somewhere in [from, to].
// A zero to leaves the interval open.
func MinuteBetween(from, to time.Time) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	return fieldPolicy(entity.FieldMinute, valuesIn(ColumnMinute, c.minutes))
}

// HourBetween matches schedules whose hour occurs somewhere in [from, to].
func HourBetween(from, to time.Time) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	return fieldPolicy(entity.FieldHour, valuesIn(ColumnHour, c.hours))
}

// DayOfWeekBetween matches schedules whose weekday occurs somewhere in [from, to].
func DayOfWeekBetween(from, to time.Time) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	return fieldPolicy(entity.FieldDayOfWeek, valuesIn(ColumnDayOfWeek, c.weekdays))
}

// DayOfMonthBetween matches schedules whose day-of-month occurs somewhere in [from, to].
func DayOfMonthBetween(from, to time.Time) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	return fieldPolicy(entity.FieldDayOfMonth, valuesIn(ColumnDayOfMonth, c.days))
}

// DayBetween is the interval form of Day.
func DayBetween(from, to time.Time) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	return dayPolicy(c.weekdays, c.days, c.lastDay)
}

// MonthBetween matches schedules whose month occurs somewhere in [from, to].
func MonthBetween(from, to time.Time) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	return fieldPolicy(entity.FieldMonthOfYear, valuesIn(ColumnMonthOfYear, c.months))
}

// YearBetween matches schedules whose year lies in [from, to].
func YearBetween(from, to time.Time) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	if c.open {
		return fieldPolicy(entity.FieldYear, Gte(ColumnYear, c.fromYear))
	}
	return fieldPolicy(entity.FieldYear, Match{Column: ColumnYear, Op: OpBetween, Value: Range{Min: c.fromYear, Max: c.toYear}})
}

// ActiveBetween matches schedules whose activity window overlaps [from, to].
func ActiveBetween(from, to time.Time) Predicate {
	out := And{Or{IsNull(ColumnExpiresAt), Gte(ColumnExpiresAt, from)}}
	if !to.IsZero() {
		out = append(out, Or{IsNull(ColumnStartsAt), Lte(ColumnStartsAt, to)})
	}
	return out
}

// Between conjoins every interval policy for [from, to], and the window
// overlap when active is set. The result never rejects a schedule that fires
// inside the interval; callers needing exact answers refine with a calculator.
func Between(from, to time.Time, active bool) Predicate {
	c := cover(from, to)
	if c.empty {
		return False
	}
	out := And{
		MinuteBetween(from, to),
		HourBetween(from, to),
		DayBetween(from, to),
		MonthBetween(from, to),
		YearBetween(from, to),
	}
	if active {
		out = append(out, ActiveBetween(from, to))
	}
	return out
}
