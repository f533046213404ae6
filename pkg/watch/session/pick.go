package session

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/racedayapp/notify-manager-go/pkg/model"
)

const (
	// eligible window in minutes before session start, inclusive on both ends
	windowMinMinutes = 1
	windowMaxMinutes = 15
	// later events cannot have a sooner session than the first few upcoming
	// ones, so the scan is bounded
	maxUpcomingEvents = 3
)

type candidate struct {
	event       *model.ScheduleEvent
	slot        model.SessionSlot
	diffMinutes int
	key         string
}

// pickEligible returns the nearest notifiable session of a category or nil.
// Slots already present in the sent-key set are skipped; at most one
// candidate is returned per invocation (the nearest one wins).
//
//nolint:whitespace // can't make both editor and linter happy
func pickEligible(
	cat model.Category,
	events []*model.ScheduleEvent,
	now time.Time,
	sent map[string]struct{},
) *candidate {
	upcoming := lo.Filter(events, func(e *model.ScheduleEvent, _ int) bool {
		_, ok := e.EarliestFutureStart(now)
		return ok
	})
	slices.SortFunc(upcoming, func(a, b *model.ScheduleEvent) int {
		aStart, _ := a.EarliestFutureStart(now)
		bStart, _ := b.EarliestFutureStart(now)
		return aStart.Compare(bStart)
	})
	if len(upcoming) > maxUpcomingEvents {
		upcoming = upcoming[:maxUpcomingEvents]
	}

	for _, ev := range upcoming {
		for _, slot := range ev.FutureSlots(now) {
			diff := diffMinutes(now, *slot.Start)
			if diff > windowMaxMinutes {
				// slots are sorted ascending, the rest is even further out
				break
			}
			if diff < windowMinMinutes {
				continue
			}
			key := model.DedupeKey(cat, ev.EventKey, slot.Type, *slot.Start)
			if _, ok := sent[key]; ok {
				// already notified, try the next slot of the same event
				continue
			}
			return &candidate{event: ev, slot: slot, diffMinutes: diff, key: key}
		}
	}
	return nil
}

func diffMinutes(now, start time.Time) int {
	return int(math.Floor(start.Sub(now).Minutes()))
}
