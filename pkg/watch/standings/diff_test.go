package standings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/racedayapp/notify-manager-go/pkg/model"
)

func entry(name string, points int64) model.StandingEntry {
	return model.StandingEntry{Name: name, Points: decimal.NewFromInt(points)}
}

func TestChangeFor(t *testing.T) {
	previous := []model.StandingEntry{
		entry("Alonso", 40),
		entry("Sainz", 12),
	}
	tests := []struct {
		name         string
		current      []model.StandingEntry
		driver       string
		raceDetected bool
		wantNotify   bool
		wantScored   bool
		wantPos      int
		wantDelta    int64
	}{
		{
			name:         "favorite won the race",
			current:      []model.StandingEntry{entry("Alonso", 65)},
			driver:       "Alonso",
			raceDetected: true,
			wantNotify:   true,
			wantScored:   true,
			wantPos:      1,
			wantDelta:    25,
		},
		{
			name:         "delta without table match",
			current:      []model.StandingEntry{entry("Alonso", 73)},
			driver:       "Alonso",
			raceDetected: true,
			wantNotify:   true,
			wantScored:   true,
			wantPos:      0,
			wantDelta:    33,
		},
		{
			name: "tracked driver outside the points",
			current: []model.StandingEntry{
				entry("Alonso", 65),
				entry("Sainz", 12),
			},
			driver:       "Sainz",
			raceDetected: true,
			wantNotify:   true,
			wantScored:   false,
		},
		{
			name:         "nothing changed in the category",
			current:      previous,
			driver:       "Sainz",
			raceDetected: false,
			wantNotify:   false,
		},
		{
			name:         "first seen driver with zero points",
			current:      []model.StandingEntry{entry("Bearman", 0)},
			driver:       "Bearman",
			raceDetected: true,
			wantNotify:   false,
		},
		{
			name:         "driver absent from current standings",
			current:      []model.StandingEntry{entry("Alonso", 65)},
			driver:       "Sainz",
			raceDetected: true,
			wantNotify:   false,
		},
		{
			name:         "downward correction stays silent",
			current:      []model.StandingEntry{entry("Alonso", 35)},
			driver:       "Alonso",
			raceDetected: true,
			wantNotify:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, notify := changeFor(model.CategoryF1,
				tt.current, previous, tt.raceDetected, tt.driver)
			assert.Equal(t, tt.wantNotify, notify)
			if !notify {
				return
			}
			assert.Equal(t, tt.wantScored, change.scored)
			if change.scored {
				assert.Equal(t, tt.wantPos, change.position)
				assert.True(t, change.pointsChange.Equal(
					decimal.NewFromInt(tt.wantDelta)))
			}
		})
	}
}

func TestAnyPointsChanged(t *testing.T) {
	previous := []model.StandingEntry{entry("Alonso", 40)}

	assert.False(t, anyPointsChanged(previous, previous))
	assert.True(t, anyPointsChanged(
		[]model.StandingEntry{entry("Alonso", 65)}, previous))
	// newcomer with points counts as change
	assert.True(t, anyPointsChanged(
		[]model.StandingEntry{entry("Alonso", 40), entry("Sainz", 10)},
		previous))
	// newcomer without points does not
	assert.False(t, anyPointsChanged(
		[]model.StandingEntry{entry("Alonso", 40), entry("Bearman", 0)},
		previous))
	// empty current run never reports a change
	assert.False(t, anyPointsChanged(nil, previous))
}
