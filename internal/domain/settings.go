package domain

import "time"

// PublicAccess controls what an agent's public profile page shows.
type PublicAccess struct {
	Enabled      bool   `json:"enabled"`
	Slug         string `json:"publicSlug"`
	Headline     string `json:"headline"`
	Bio          string `json:"bio"`
	ShowPhone    bool   `json:"showPhone"`
	ShowEmail    bool   `json:"showEmail"`
	ShowListings bool   `json:"showListings"`
}

// CachedSettings is the last known PublicAccess for a user. Pending is set
// when an edit was saved locally because the backend was unreachable.
type CachedSettings struct {
	UserID    string
	Settings  PublicAccess
	Pending   bool
	UpdatedAt time.Time
}
