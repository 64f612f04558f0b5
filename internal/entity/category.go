package entity

import "fmt"

// Category is the single active recurrence type of a schedule.
type Category string

const (
	CategoryMinutely  Category = "minutely"
	CategoryHourly    Category = "hourly"
	CategoryDaily     Category = "daily"
	CategoryWeekly    Category = "weekly"
	CategoryMonthly   Category = "monthly"
	CategoryAnnually  Category = "annually"
	CategoryQuarterly Category = "quarterly"
	CategoryAdhoc     Category = "adhoc"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryMinutely,
	CategoryHourly,
	CategoryDaily,
	CategoryWeekly,
	CategoryMonthly,
	CategoryAnnually,
	CategoryQuarterly,
	CategoryAdhoc,
}

// required maps each category to the calendar fields it cannot run without.
var required = map[Category][]Field{
	CategoryMinutely:  {},
	CategoryHourly:    {FieldMinute},
	CategoryDaily:     {FieldHour, FieldMinute},
	CategoryWeekly:    {FieldDayOfWeek, FieldHour, FieldMinute},
	CategoryMonthly:   {FieldDayOfMonth, FieldHour, FieldMinute},
	CategoryQuarterly: {FieldDayOfMonth, FieldHour, FieldMinute},
	CategoryAnnually:  {FieldMonthOfYear, FieldDayOfMonth, FieldHour, FieldMinute},
	CategoryAdhoc:     {FieldYear, FieldMonthOfYear, FieldDayOfMonth, FieldHour, FieldMinute},
}

// relevant maps each calendar field to the categories for which it carries meaning.
var relevant = map[Field][]Category{
	FieldMinute:      {CategoryHourly, CategoryDaily, CategoryWeekly, CategoryMonthly, CategoryAnnually, CategoryQuarterly, CategoryAdhoc},
	FieldHour:        {CategoryDaily, CategoryWeekly, CategoryMonthly, CategoryAnnually, CategoryQuarterly, CategoryAdhoc},
	FieldDayOfWeek:   {CategoryWeekly},
	FieldDayOfMonth:  {CategoryMonthly, CategoryAnnually, CategoryQuarterly, CategoryAdhoc},
	FieldMonthOfYear: {CategoryAnnually, CategoryAdhoc},
	FieldYear:        {CategoryAdhoc},
}

// ParseCategory converts a name such as "weekly" into a Category.
func ParseCategory(name string) (Category, error) {
	c := Category(name)
	if !c.Valid() {
		return "", fmt.Errorf("unknown schedule category %q", name)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := required[c]
	return ok
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// Requires reports whether f must be set for a schedule of this category.
func (c Category) Requires(f Field) bool {
	for _, r := range required[c] {
		if r == f {
			return true
		}
	}
	return false
}

// RequiredFields returns the required fields in the fixed field order.
func (c Category) RequiredFields() []Field {
	var out []Field
	for _, f := range Fields {
		if c.Requires(f) {
			out = append(out, f)
		}
	}
	return out
}

// Relevant reports whether f is meaningful for this category.
func (c Category) Relevant(f Field) bool {
	for _, r := range relevant[f] {
		if r == c {
			return true
		}
	}
	return false
}

// RelevantLastDayOfMonth reports whether the last-day-of-month marker applies.
// It follows day_of_month.
func (c Category) RelevantLastDayOfMonth() bool {
	return c.Relevant(FieldDayOfMonth)
}

// RelevantCategories returns the categories for which f is relevant.
func RelevantCategories(f Field) []Category {
	return append([]Category(nil), relevant[f]...)
}

// IrrelevantCategories returns the categories for which f carries no meaning.
func IrrelevantCategories(f Field) []Category {
	var out []Category
	for _, c := range Categories {
		if !c.Relevant(f) {
			out = append(out, c)
		}
	}
	return out
}
