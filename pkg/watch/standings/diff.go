package standings

import (
	"github.com/shopspring/decimal"

	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/points"
)

type driverChange struct {
	pointsChange decimal.Decimal
	position     int // 0 = unknown
	scored       bool
}

// changeFor computes the notifiable change for one favorite driver.
// notify=false means nothing to report: the driver is absent from the
// current standings, or is seen for the first time with zero points, or
// the whole category is unchanged since the previous run.
//
//nolint:whitespace // can't make both editor and linter happy
func changeFor(
	cat model.Category,
	current, previous []model.StandingEntry,
	raceDetected bool,
	driver string,
) (change driverChange, notify bool) {
	cur, ok := model.FindEntry(current, driver)
	if !ok {
		// driver may not have participated or data is incomplete
		return driverChange{}, false
	}
	prev, hadPrev := model.FindEntry(previous, driver)
	prevPoints := decimal.Zero
	if hadPrev {
		prevPoints = prev.Points
	}
	delta := cur.Points.Sub(prevPoints)

	switch {
	case delta.IsPositive():
		return driverChange{
			pointsChange: delta,
			position:     points.PositionFromDelta(cat, delta),
			scored:       true,
		}, true
	case delta.IsZero() && hadPrev && raceDetected:
		// tracked driver failed to score while others did
		return driverChange{}, true
	default:
		// first-seen with zero points, an unchanged category, or a
		// downward correction: nothing worth reporting
		return driverChange{}, false
	}
}

// anyPointsChanged reports whether any driver gained or lost points since
// the previous snapshot. When false the run is a no-op for notifications:
// identical standings never produce a message.
func anyPointsChanged(current, previous []model.StandingEntry) bool {
	for _, cur := range current {
		prev, ok := model.FindEntry(previous, cur.Name)
		if !ok {
			if !cur.Points.IsZero() {
				return true
			}
			continue
		}
		if !cur.Points.Equal(prev.Points) {
			return true
		}
	}
	return false
}
