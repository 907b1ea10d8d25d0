package event_bus

import (
	"time"

	"github.com/google/uuid"
)

const (
	TeacherDeletedType   EventType = "subject.teacher.deleted"
	WeekStartChangedType EventType = "settings.week_start.changed"
	AlarmTriggeredType   EventType = "reminder.alarm.triggered"
)

type TeacherDeleted struct {
	Id   uuid.UUID
	Name string
}

type WeekStartChanged struct {
	// SundayFirst is false for a Monday-first week.
	SundayFirst bool
}

type AlarmTriggered struct {
	AlarmId   uuid.UUID
	EventId   uuid.UUID
	EventName string
	AlarmName string
	TriggerAt time.Time
}
