// Package settings defines the per-profile display preferences.
package settings

import (
	"time"

	"github.com/i474232898/tempus/internal/weather"
)

// Theme is the display color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// SearchEntry is one city the user looked up.
type SearchEntry struct {
	City       string    `json:"city"`
	Country    string    `json:"country,omitempty"`
	SearchedAt time.Time `json:"searchedAt"`
}

// Location converts the entry for a weather lookup.
func (e SearchEntry) Location() weather.Location {
	return weather.Location{City: e.City, Country: e.Country}
}

// Preferences holds everything the settings drawer persists.
type Preferences struct {
	ID            string            `json:"id"`
	Units         weather.Units     `json:"units"`
	Theme         Theme             `json:"theme"`
	LockScreen    bool              `json:"lockScreen"`
	Notifications bool              `json:"notifications"`
	StatusBar     bool              `json:"statusBar"`
	LastCity      *weather.Location `json:"lastCity,omitempty"`
	SearchHistory []SearchEntry     `json:"searchHistory"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Defaults returns the preferences of a fresh profile.
func Defaults(id string, units weather.Units) Preferences {
	return Preferences{
		ID:            id,
		Units:         units,
		Theme:         ThemeDark,
		StatusBar:     true,
		SearchHistory: []SearchEntry{},
	}
}

// Update is a partial change; nil fields are left untouched.
type Update struct {
	Units         *string           `json:"units" validate:"omitempty,oneof=metric imperial"`
	Theme         *string           `json:"theme" validate:"omitempty,oneof=light dark"`
	LockScreen    *bool             `json:"lockScreen"`
	Notifications *bool             `json:"notifications"`
	StatusBar     *bool             `json:"statusBar"`
	LastCity      *weather.Location `json:"lastCity"`
}

// Apply merges u into p.
func (u Update) Apply(p *Preferences) {
	if u.Units != nil {
		p.Units = weather.ParseUnits(*u.Units)
	}
	if u.Theme != nil {
		p.Theme = Theme(*u.Theme)
	}
	if u.LockScreen != nil {
		p.LockScreen = *u.LockScreen
	}
	if u.Notifications != nil {
		p.Notifications = *u.Notifications
	}
	if u.StatusBar != nil {
		p.StatusBar = *u.StatusBar
	}
	if u.LastCity != nil {
		loc := *u.LastCity
		p.LastCity = &loc
	}
}
