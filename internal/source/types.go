// Package source holds the GitHub-derived content entities and the logic
// that turns them into embeddable records.
package source

import "time"

// User identifies a tenant. All indexed content and every search is
// scoped to one user.
type User struct {
	ID          int64
	Email       string
	DisplayName string
}

// Issue is a synced GitHub issue belonging to one user.
type Issue struct {
	ID             int64
	UserID         int64
	Title          string
	Body           string
	RepositoryName string
	State          string
	URL            string
	CreatedAt      time.Time
}

// Repository is a synced GitHub repository belonging to one user.
type Repository struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	Language    string
	Stars       int
	URL         string
	CreatedAt   time.Time
}
