package entity

// Schedulable is implemented by any domain entity a schedule can be attached to.
type Schedulable interface {
	SchedulableType() string
	SchedulableID() uint
}

// Owner is the plain Schedulable: a polymorphic type name plus an id.
type Owner struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

// SchedulableType implements Schedulable.
func (o Owner) SchedulableType() string { return o.Type }

// SchedulableID implements Schedulable.
func (o Owner) SchedulableID() uint { return o.ID }
