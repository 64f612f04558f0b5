package common

const (
	// RedisStreamScheduleDue receives one message per schedule occurrence picked up by the poller.
	RedisStreamScheduleDue = "schedule.due"

	// ScheduleEventDue is the event type carried in every due message.
	ScheduleEventDue = "schedule.due"

	DefaultOccurrenceCount = 5
	MaxOccurrenceCount     = 1000
)
