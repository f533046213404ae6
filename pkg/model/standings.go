package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StandingEntry is one driver's row in a category's championship standings.
// Points use decimal arithmetic; half points have been awarded historically
// and float equality would make the reverse points lookup unreliable.
type StandingEntry struct {
	Name     string          `json:"name"`
	Points   decimal.Decimal `json:"points"`
	Position int             `json:"position"`
}

// StandingsSnapshot is the previous run's standings for one category.
// Exactly one snapshot per category; always overwritten whole.
type StandingsSnapshot struct {
	Category   Category
	Entries    []StandingEntry
	LastUpdate time.Time
}

// EntryByName finds a driver by exact name match.
func (s *StandingsSnapshot) EntryByName(name string) (StandingEntry, bool) {
	return FindEntry(s.Entries, name)
}

// FindEntry finds a driver by exact name match in a standings slice.
func FindEntry(entries []StandingEntry, name string) (StandingEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return StandingEntry{}, false
}
