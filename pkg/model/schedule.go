package model

import (
	"fmt"
	"slices"
	"time"
)

// SessionType identifies one timed activity within a race weekend.
type SessionType string

const (
	SessionPractice1  SessionType = "practice1"
	SessionPractice2  SessionType = "practice2"
	SessionPractice3  SessionType = "practice3"
	SessionQualifying SessionType = "qualifying"
	SessionSprint     SessionType = "sprint"
	SessionRace       SessionType = "race"
)

// Label returns the Spanish display label used in notifications.
func (s SessionType) Label() string {
	switch s {
	case SessionPractice1:
		return "Práctica 1"
	case SessionPractice2:
		return "Práctica 2"
	case SessionPractice3:
		return "Práctica 3"
	case SessionQualifying:
		return "Clasificación"
	case SessionSprint:
		return "Sprint"
	case SessionRace:
		return "Carrera"
	default:
		return string(s)
	}
}

// SessionSlot is one scheduled session. Start is nil while the slot is TBD;
// such slots are never eligible for notification.
type SessionSlot struct {
	Type  SessionType
	Start *time.Time
}

// ScheduleEvent is one race weekend of a category. Read-only to this service.
type ScheduleEvent struct {
	Category Category
	EventKey string
	GpName   string
	Sessions map[SessionType]SessionSlot
}

// FutureSlots returns all slots with a start strictly after now,
// sorted ascending by start.
func (e *ScheduleEvent) FutureSlots(now time.Time) []SessionSlot {
	ret := make([]SessionSlot, 0, len(e.Sessions))
	for _, slot := range e.Sessions {
		if slot.Start != nil && slot.Start.After(now) {
			ret = append(ret, slot)
		}
	}
	slices.SortFunc(ret, func(a, b SessionSlot) int {
		return a.Start.Compare(*b.Start)
	})
	return ret
}

// EarliestFutureStart returns the start of the next upcoming session.
// ok is false when the event has no future session.
func (e *ScheduleEvent) EarliestFutureStart(now time.Time) (time.Time, bool) {
	slots := e.FutureSlots(now)
	if len(slots) == 0 {
		return time.Time{}, false
	}
	return *slots[0].Start, true
}

// DedupeKey builds the idempotency key for a session notification.
// The session start is truncated to the minute, so repeated scheduler ticks
// within the eligible window always compute the same key.
func DedupeKey(cat Category, eventKey string, st SessionType, start time.Time) string {
	bucket := start.UTC().Truncate(time.Minute).Format("200601021504")
	return fmt.Sprintf("%s_%s_%s_%s", cat, eventKey, st, bucket)
}
