package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sinclairt/schedulable/internal/entity"
)

var (
	// ErrUnknownProperty is returned for a field name or identifier the builder does not know.
	ErrUnknownProperty = errors.New("unknown schedule property")

	// ErrMissingRequiredFields matches every *MissingRequiredFieldsError.
	ErrMissingRequiredFields = errors.New("missing required fields")

	// ErrInvalidActivityWindow is returned when starts_at is after expires_at.
	ErrInvalidActivityWindow = errors.New("starts_at must not be after expires_at")

	// ErrUnknownCategory is returned by SetCategory for an unrecognised category.
	ErrUnknownCategory = errors.New("unknown schedule category")

	// ErrNoOwner is returned when saving a schedule that is not attached to anything.
	ErrNoOwner = errors.New("schedule has no owner")
)

// MissingRequiredFieldsError lists the unmet requirements of a category in field order.
type MissingRequiredFieldsError struct {
	Category entity.Category
	Fields   []string
}

func (e *MissingRequiredFieldsError) Error() string {
	return fmt.Sprintf("%s schedule is missing required fields: %s", e.Category, strings.Join(e.Fields, ", "))
}

// Is makes errors.Is(err, ErrMissingRequiredFields) hold.
func (e *MissingRequiredFieldsError) Is(target error) bool {
	return target == ErrMissingRequiredFields
}
