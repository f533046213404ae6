package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPreferenceFor(t *testing.T) {
	user := &UserPreference{
		Prefs: []CategoryPreference{
			{Category: "F1", NotificationsEnabled: true, FavoriteDriver: "Alonso"},
			{Category: "motogp", NotificationsEnabled: false},
		},
	}

	// stored casing varies between app versions
	pref, ok := user.PreferenceFor(CategoryF1)
	assert.True(t, ok)
	assert.True(t, pref.NotificationsEnabled)
	assert.Equal(t, "Alonso", pref.FavoriteDriver)

	pref, ok = user.PreferenceFor(CategoryMotoGP)
	assert.True(t, ok)
	assert.False(t, pref.NotificationsEnabled)

	_, ok = user.PreferenceFor(CategoryIndycar)
	assert.False(t, ok)
}

func TestUserHasToken(t *testing.T) {
	empty := ""
	token := "device-token"
	assert.False(t, (&UserPreference{}).HasToken())
	assert.False(t, (&UserPreference{FCMToken: &empty}).HasToken())
	assert.True(t, (&UserPreference{FCMToken: &token}).HasToken())
}
