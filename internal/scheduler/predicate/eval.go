package predicate

import (
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
)

// Eval reports whether s satisfies p. Comparisons against an absent column
// are false, the same as in SQL.
func Eval(p Predicate, s *entity.Schedule) bool {
	switch p := p.(type) {
	case And:
		for _, child := range p {
			if !Eval(child, s) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range p {
			if Eval(child, s) {
				return true
			}
		}
		return false
	case Not:
		return !Eval(p.P, s)
	case constant:
		return bool(p)
	case Match:
		return p.eval(s)
	}
	return false
}

// Filter returns the schedules satisfying p, preserving order.
func Filter(p Predicate, schedules []*entity.Schedule) []*entity.Schedule {
	var out []*entity.Schedule
	for _, s := range schedules {
		if Eval(p, s) {
			out = append(out, s)
		}
	}
	return out
}

func (m Match) eval(s *entity.Schedule) bool {
	v, ok := columnValue(s, m.Column)
	switch m.Op {
	case OpIsNull:
		return !ok
	case OpNotNull:
		return ok
	}
	if !ok {
		return false
	}

	switch m.Op {
	case OpEq:
		return equal(v, m.Value)
	case OpIn:
		for _, candidate := range list(m.Value) {
			if equal(v, candidate) {
				return true
			}
		}
		return false
	case OpBetween:
		r, isRange := m.Value.(Range)
		n, isInt := v.(int)
		return isRange && isInt && n >= r.Min && n <= r.Max
	case OpLte:
		c, ok := compare(v, m.Value)
		return ok && c <= 0
	case OpGte:
		c, ok := compare(v, m.Value)
		return ok && c >= 0
	}
	return false
}

// columnValue returns the normalised value of c and whether it is present.
func columnValue(s *entity.Schedule, c Column) (any, bool) {
	if f, ok := c.field(); ok {
		v := s.Value(f)
		if v == nil {
			return nil, false
		}
		return *v, true
	}

	switch c {
	case ColumnCategory:
		return string(s.Category), true
	case ColumnLastDayOfMonth:
		return s.IsLastDayOfMonth, true
	case ColumnStartsAt:
		return timeValue(s.StartsAt)
	case ColumnExpiresAt:
		return timeValue(s.ExpiresAt)
	case ColumnNextRunAt:
		return timeValue(s.NextRunAt)
	}
	return nil, false
}

func timeValue(t *time.Time) (any, bool) {
	if t == nil {
		return nil, false
	}
	return *t, true
}

// normalise maps operand types onto the ones columnValue produces.
func normalise(v any) any {
	switch v := v.(type) {
	case entity.Category:
		return string(v)
	case time.Weekday:
		return int(v)
	case time.Month:
		return int(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return *v
	}
	return v
}

func list(v any) []any {
	switch v := v.(type) {
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []entity.Category:
		out := make([]any, len(v))
		for i, c := range v {
			out[i] = string(c)
		}
		return out
	case []any:
		return v
	}
	return nil
}

func equal(a, b any) bool {
	b = normalise(b)
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func compare(a, b any) (int, bool) {
	b = normalise(b)
	switch a := a.(type) {
	case int:
		bn, ok := b.(int)
		if !ok {
			return 0, false
		}
		return a - bn, true
	case time.Time:
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return a.Compare(bt), true
	}
	return 0, false
}
