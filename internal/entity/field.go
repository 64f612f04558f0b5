package entity

import "fmt"

// Field identifies one optional calendar field of a schedule.
// The declaration order is the order used when reporting missing fields.
type Field int

const (
	FieldMinute Field = iota
	FieldHour
	FieldDayOfWeek
	FieldDayOfMonth
	FieldMonthOfYear
	FieldYear
)

// Fields lists every calendar field in the fixed order.
var Fields = []Field{FieldMinute, FieldHour, FieldDayOfWeek, FieldDayOfMonth, FieldMonthOfYear, FieldYear}

var fieldNames = [...]string{"minute", "hour", "day_of_week", "day_of_month", "month_of_year", "year"}

// fieldBounds holds the inclusive value range of each field. Year is bounded loosely.
var fieldBounds = [...][2]int{{0, 59}, {0, 23}, {0, 6}, {1, 31}, {1, 12}, {1, 9999}}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	return f >= FieldMinute && f <= FieldYear
}

// String returns the snake_case column name of the field.
func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Bounds returns the inclusive range accepted for the field.
func (f Field) Bounds() (min, max int) {
	if !f.Valid() {
		return 0, -1
	}
	return fieldBounds[f][0], fieldBounds[f][1]
}

// InRange reports whether v is acceptable for the field.
func (f Field) InRange(v int) bool {
	min, max := f.Bounds()
	return v >= min && v <= max
}

// LookupField resolves a snake_case field name.
func LookupField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}
