// Package predicate builds composable filters over schedules. A tree is either
// evaluated in memory with Eval or compiled to a GORM where clause with ToSQL.
package predicate

import (
	"github.com/sinclairt/schedulable/internal/entity"
)

// Column is a filterable schedules column.
type Column string

const (
	ColumnCategory       Column = "category"
	ColumnMinute         Column = "minute"
	ColumnHour           Column = "hour"
	ColumnDayOfWeek      Column = "day_of_week"
	ColumnDayOfMonth     Column = "day_of_month"
	ColumnLastDayOfMonth Column = "is_last_day_of_month"
	ColumnMonthOfYear    Column = "month_of_year"
	ColumnYear           Column = "year"
	ColumnStartsAt       Column = "starts_at"
	ColumnExpiresAt      Column = "expires_at"
	ColumnNextRunAt      Column = "next_run_at"
)

var fieldColumns = map[entity.Field]Column{
	entity.FieldMinute:      ColumnMinute,
	entity.FieldHour:        ColumnHour,
	entity.FieldDayOfWeek:   ColumnDayOfWeek,
	entity.FieldDayOfMonth:  ColumnDayOfMonth,
	entity.FieldMonthOfYear: ColumnMonthOfYear,
	entity.FieldYear:        ColumnYear,
}

// ColumnOf returns the column storing a calendar field.
func ColumnOf(f entity.Field) Column {
	return fieldColumns[f]
}

// Valid reports whether c is a known column.
func (c Column) Valid() bool {
	switch c {
	case ColumnCategory, ColumnLastDayOfMonth, ColumnStartsAt, ColumnExpiresAt, ColumnNextRunAt:
		return true
	}
	_, ok := c.field()
	return ok
}

func (c Column) field() (entity.Field, bool) {
	for f, col := range fieldColumns {
		if col == c {
			return f, true
		}
	}
	return 0, false
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpBetween
	OpIsNull
	OpNotNull
	OpLte
	OpGte
)

// Range is the inclusive operand of OpBetween.
type Range struct {
	Min int
	Max int
}

// Predicate is a node of a filter tree: And, Or, Not, Match, True or False.
type Predicate interface {
	predicate()
}

// And holds when every child holds. An empty And is true.
type And []Predicate

// Or holds when any child holds. An empty Or is false.
type Or []Predicate

// Not negates its child. A comparison against a NULL column is false, so
// its negation is true; the SQL compiler preserves this.
type Not struct {
	P Predicate
}

// Match compares one column. Value depends on Op:
// a scalar for OpEq/OpLte/OpGte, a slice for OpIn, a Range for OpBetween,
// nothing for OpIsNull/OpNotNull.
type Match struct {
	Column Column
	Op     Op
	Value  any
}

type constant bool

var (
	// True matches every schedule.
	True Predicate = constant(true)
	// False matches nothing.
	False Predicate = constant(false)
)

func (And) predicate()      {}
func (Or) predicate()       {}
func (Not) predicate()      {}
func (Match) predicate()    {}
func (constant) predicate() {}

// Eq is shorthand for Match{c, OpEq, v}.
func Eq(c Column, v any) Match { return Match{Column: c, Op: OpEq, Value: v} }

// In is shorthand for Match{c, OpIn, values}.
func In(c Column, values any) Match { return Match{Column: c, Op: OpIn, Value: values} }

// IsNull is shorthand for Match{c, OpIsNull, nil}.
func IsNull(c Column) Match { return Match{Column: c, Op: OpIsNull} }

// NotNull is shorthand for Match{c, OpNotNull, nil}.
func NotNull(c Column) Match { return Match{Column: c, Op: OpNotNull} }

// Lte is shorthand for Match{c, OpLte, v}.
func Lte(c Column, v any) Match { return Match{Column: c, Op: OpLte, Value: v} }

// Gte is shorthand for Match{c, OpGte, v}.
func Gte(c Column, v any) Match { return Match{Column: c, Op: OpGte, Value: v} }
