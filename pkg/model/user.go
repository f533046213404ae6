package model

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

// CategoryPreference is one user's settings for a single category.
type CategoryPreference struct {
	Category             string `json:"category"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	FavoriteDriver       string `json:"favoriteDriver,omitempty"`
}

// UserPreference is one user's notification profile. Mutated by the client
// app; this service only ever nulls FCMToken.
type UserPreference struct {
	ID         uint32
	ExternalID uuid.UUID
	FCMToken   *string
	Prefs      []CategoryPreference
}

// HasToken reports whether the user has a usable device token.
func (u *UserPreference) HasToken() bool {
	return u.FCMToken != nil && *u.FCMToken != ""
}

// PreferenceFor returns the first preference entry matching the category
// (case-insensitive).
func (u *UserPreference) PreferenceFor(cat Category) (CategoryPreference, bool) {
	for _, p := range u.Prefs {
		if strings.EqualFold(p.Category, string(cat)) {
			return p, true
		}
	}
	return CategoryPreference{}, false
}
