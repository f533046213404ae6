// Package points holds the fixed scoring tables per category and the
// reverse lookup used to infer a finishing position from a points delta.
package points

import (
	"github.com/shopspring/decimal"

	"github.com/racedayapp/notify-manager-go/pkg/model"
)

// index = position-1
var racePoints = map[model.Category][]int64{
	model.CategoryF1:     {25, 18, 15, 12, 10, 8, 6, 4, 2, 1},
	model.CategoryMotoGP: {25, 20, 16, 13, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	model.CategoryIndycar: {
		50, 40, 35, 32, 30, 28, 26, 24, 22, 20,
		19, 18, 17, 16, 15, 14, 13, 12, 11, 10,
		9, 8, 7, 6, 5,
	},
}

var sprintPoints = map[model.Category][]int64{
	model.CategoryF1:     {8, 7, 6, 5, 4, 3, 2, 1},
	model.CategoryMotoGP: {12, 9, 7, 6, 5, 4, 3, 2, 1},
	// IndyCar has no sprint format
}

// PositionFromDelta resolves a finishing position from a points delta.
// The race table is authoritative; the sprint table is only consulted when
// the race table has no exact match. 0 means the position is unknown
// (the delta matches neither table).
func PositionFromDelta(cat model.Category, delta decimal.Decimal) int {
	if pos := lookup(racePoints[cat], delta); pos > 0 {
		return pos
	}
	return lookup(sprintPoints[cat], delta)
}

func lookup(table []int64, delta decimal.Decimal) int {
	for i, v := range table {
		if delta.Equal(decimal.NewFromInt(v)) {
			return i + 1
		}
	}
	return 0
}
