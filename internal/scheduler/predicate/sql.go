package predicate

import (
	"strings"

	"github.com/sinclairt/schedulable/internal/entity"
)

// ToSQL compiles p into a where clause with "?" placeholders, ready for
// db.Where(query, args...). Column names come from the closed Column set.
func ToSQL(p Predicate) (string, []any) {
	var c sqlCompiler
	c.write(p)
	return c.sb.String(), c.args
}

type sqlCompiler struct {
	sb   strings.Builder
	args []any
}

func (c *sqlCompiler) write(p Predicate) {
	switch p := p.(type) {
	case And:
		c.join(p, " AND ", "TRUE")
	case Or:
		c.join(p, " OR ", "FALSE")
	case Not:
		c.sb.WriteString("NOT COALESCE(")
		c.write(p.P)
		c.sb.WriteString(", FALSE)")
	case constant:
		if p {
			c.sb.WriteString("TRUE")
		} else {
			c.sb.WriteString("FALSE")
		}
	case Match:
		c.match(p)
	default:
		c.sb.WriteString("FALSE")
	}
}

func (c *sqlCompiler) join(children []Predicate, sep, empty string) {
	if len(children) == 0 {
		c.sb.WriteString(empty)
		return
	}
	if len(children) == 1 {
		c.write(children[0])
		return
	}
	c.sb.WriteString("(")
	for i, child := range children {
		if i > 0 {
			c.sb.WriteString(sep)
		}
		c.write(child)
	}
	c.sb.WriteString(")")
}

func (c *sqlCompiler) match(m Match) {
	if !m.Column.Valid() {
		c.sb.WriteString("FALSE")
		return
	}
	col := string(m.Column)

	switch m.Op {
	case OpIsNull:
		c.sb.WriteString(col + " IS NULL")
	case OpNotNull:
		c.sb.WriteString(col + " IS NOT NULL")
	case OpEq:
		c.sb.WriteString(col + " = ?")
		c.args = append(c.args, sqlArg(m.Value))
	case OpIn:
		values := list(m.Value)
		if len(values) == 0 {
			c.sb.WriteString("FALSE")
			return
		}
		c.sb.WriteString(col + " IN ?")
		c.args = append(c.args, sqlArg(m.Value))
	case OpBetween:
		r, _ := m.Value.(Range)
		c.sb.WriteString(col + " BETWEEN ? AND ?")
		c.args = append(c.args, r.Min, r.Max)
	case OpLte:
		c.sb.WriteString(col + " <= ?")
		c.args = append(c.args, sqlArg(m.Value))
	case OpGte:
		c.sb.WriteString(col + " >= ?")
		c.args = append(c.args, sqlArg(m.Value))
	default:
		c.sb.WriteString("FALSE")
	}
}

// sqlArg converts named types the driver would not recognise.
func sqlArg(v any) any {
	switch v := v.(type) {
	case []entity.Category:
		out := make([]string, len(v))
		for i, cat := range v {
			out[i] = string(cat)
		}
		return out
	}
	return normalise(v)
}
