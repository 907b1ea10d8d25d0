package category

import (
	"slices"
	"strings"
	"time"

	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
)

// DefaultEventName is used for events saved without a name.
const DefaultEventName = "Untitled"

type Category struct {
	Id          uuid.UUID
	Name        string
	Position    int
	Color       color.RGB
	Description string
	Events      []Event
}

// Event is a dated entry of a category. A repeating event recurs every LoopDays days starting at
// Date.
type Event struct {
	Id              uuid.UUID
	CategoryId      uuid.UUID
	Position        int
	Name            string
	Date            time.Time
	AllDay          bool
	DurationMinutes int
	NeedLoop        bool
	LoopDays        int
	Color           color.RGB
	Description     string
	Details         string
	IsReminder      bool
	Tags            []string
	Alarms          []Alarm
}

func (e Event) Repeats() bool {
	return e.NeedLoop && e.LoopDays > 0
}

type Alarm struct {
	Id        uuid.UUID
	EventId   uuid.UUID
	Name      string
	TriggerAt time.Time
	Fired     bool
}

// DueAlarm is an alarm together with the name of the event it belongs to.
type DueAlarm struct {
	Alarm
	EventName string
}

type CategoryDraft struct {
	Name        string `validate:"required,max=200"`
	Color       string `validate:"omitempty,hexcolor"`
	Description string `validate:"max=2000"`
}

func (d CategoryDraft) normalized() CategoryDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Color = strings.TrimSpace(d.Color)
	return d
}

type EventDraft struct {
	Name            string    `validate:"max=200"`
	Date            time.Time `validate:"required"`
	AllDay          bool
	DurationMinutes int `validate:"gte=0,lte=10080"`
	NeedLoop        bool
	LoopDays        int    `validate:"gte=0,required_if=NeedLoop true"`
	Color           string `validate:"omitempty,hexcolor"`
	Description     string `validate:"max=2000"`
	Details         string `validate:"max=10000"`
	IsReminder      bool
	Tags            []string     `validate:"dive,required,max=50"`
	Alarms          []AlarmDraft `validate:"dive"`
}

type AlarmDraft struct {
	Name      string    `validate:"max=200"`
	TriggerAt time.Time `validate:"required"`
}

func (d EventDraft) normalized() EventDraft {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = DefaultEventName
	}
	d.Color = strings.TrimSpace(d.Color)
	if d.AllDay {
		d.DurationMinutes = 0
	}
	if !d.NeedLoop {
		d.LoopDays = 0
	}
	seen := make(map[string]bool, len(d.Tags))
	var tags []string
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	d.Tags = tags
	return d
}
