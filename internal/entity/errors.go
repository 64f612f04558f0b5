package entity

import "errors"

// ErrScheduleNotFound is returned by repositories when no schedule matches the lookup.
var ErrScheduleNotFound = errors.New("schedule not found")
