package points

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/racedayapp/notify-manager-go/pkg/model"
)

func TestPositionFromDelta(t *testing.T) {
	tests := []struct {
		name  string
		cat   model.Category
		delta decimal.Decimal
		want  int
	}{
		{
			name:  "f1 race winner",
			cat:   model.CategoryF1,
			delta: decimal.NewFromInt(25),
			want:  1,
		},
		{
			name: "f1 race table wins over sprint table",
			// 8 points is P6 in the race and P1 in the sprint
			cat:   model.CategoryF1,
			delta: decimal.NewFromInt(8),
			want:  6,
		},
		{
			name:  "f1 sprint only score",
			cat:   model.CategoryF1,
			delta: decimal.NewFromInt(7),
			want:  2,
		},
		{
			name:  "f1 unknown delta",
			cat:   model.CategoryF1,
			delta: decimal.NewFromInt(26),
			want:  0,
		},
		{
			name:  "motogp last points position",
			cat:   model.CategoryMotoGP,
			delta: decimal.NewFromInt(1),
			want:  15,
		},
		{
			name: "motogp sprint winner",
			// 12 appears only in the sprint table
			cat:   model.CategoryMotoGP,
			delta: decimal.NewFromInt(12),
			want:  1,
		},
		{
			name: "motogp race table wins over sprint table",
			// 9 points is P7 in the race and P2 in the sprint
			cat:   model.CategoryMotoGP,
			delta: decimal.NewFromInt(9),
			want:  7,
		},
		{
			name:  "indycar winner",
			cat:   model.CategoryIndycar,
			delta: decimal.NewFromInt(50),
			want:  1,
		},
		{
			name:  "indycar has no sprint table",
			cat:   model.CategoryIndycar,
			delta: decimal.NewFromInt(100),
			want:  0,
		},
		{
			name:  "fractional delta never matches",
			cat:   model.CategoryF1,
			delta: decimal.RequireFromString("12.5"),
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PositionFromDelta(tt.cat, tt.delta))
		})
	}
}
