package model

// Category identifies one of the racing series covered by the app.
type Category string

const (
	CategoryF1      Category = "f1"
	CategoryMotoGP  Category = "motogp"
	CategoryIndycar Category = "indycar"
)

// AllCategories returns the fixed set of supported categories.
// Order matters only for deterministic processing.
func AllCategories() []Category {
	return []Category{CategoryF1, CategoryMotoGP, CategoryIndycar}
}

// Title returns the display name used in notification copy.
func (c Category) Title() string {
	switch c {
	case CategoryF1:
		return "F1"
	case CategoryMotoGP:
		return "MotoGP"
	case CategoryIndycar:
		return "IndyCar"
	default:
		return string(c)
	}
}
