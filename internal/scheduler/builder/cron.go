package builder

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/recurrence"
)

// aliases maps the supported shorthands to the category they imply.
var aliases = map[string]entity.Category{
	"@hourly":   entity.CategoryHourly,
	"@daily":    entity.CategoryDaily,
	"@weekly":   entity.CategoryWeekly,
	"@monthly":  entity.CategoryMonthly,
	"@annually": entity.CategoryAnnually,
	"@yearly":   entity.CategoryAnnually,
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// starBit is set by the cron parser on fields written as "*".
const starBit = 1 << 63

// cronImport is the outcome of parsing a five-field expression or alias.
type cronImport struct {
	values   map[entity.Field]*int
	category entity.Category
	alias    bool
}

// parseCron accepts "minute hour day_of_month month_of_year day_of_week" where
// every token is "*" or a single integer, or one of the named aliases.
func parseCron(expr string) (*cronImport, error) {
	expr = strings.TrimSpace(expr)
	category, alias := aliases[expr]
	if strings.HasPrefix(expr, "@") && !alias {
		return nil, fmt.Errorf("%w: unsupported alias %q", recurrence.ErrInvalidExpression, expr)
	}
	if !alias {
		if err := checkTokens(expr); err != nil {
			return nil, err
		}
	}

	parsed, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recurrence.ErrInvalidExpression, err)
	}
	sched, ok := parsed.(*cron.SpecSchedule)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a calendar expression", recurrence.ErrInvalidExpression, expr)
	}

	out := &cronImport{
		values: map[entity.Field]*int{
			entity.FieldMinute:      single(sched.Minute),
			entity.FieldHour:        single(sched.Hour),
			entity.FieldDayOfMonth:  single(sched.Dom),
			entity.FieldMonthOfYear: single(sched.Month),
			entity.FieldDayOfWeek:   single(sched.Dow),
		},
		category: category,
		alias:    alias,
	}

	probe := &entity.Schedule{}
	for f, v := range out.values {
		probe.SetValue(f, v)
	}
	if _, err := recurrence.Compile(probe); err != nil {
		return nil, err
	}
	return out, nil
}

func checkTokens(expr string) error {
	tokens := strings.Fields(expr)
	if len(tokens) != 5 {
		return fmt.Errorf("%w: %q must have 5 fields, got %d", recurrence.ErrInvalidExpression, expr, len(tokens))
	}
	for _, token := range tokens {
		if token == entity.Wildcard {
			continue
		}
		for _, r := range token {
			if r < '0' || r > '9' {
				return fmt.Errorf("%w: token %q must be %q or an integer", recurrence.ErrInvalidExpression, token, entity.Wildcard)
			}
		}
	}
	return nil
}

// single decodes a parsed field: nil for a wildcard, otherwise its one value.
func single(field uint64) *int {
	if field&starBit != 0 || bits.OnesCount64(field) != 1 {
		return nil
	}
	return entity.Int(bits.TrailingZeros64(field))
}
