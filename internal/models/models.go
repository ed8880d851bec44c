package models

import "time"

type User struct {
	ID        int64
	FirstName string
	LastName  string
	ImageURL  string
}

// FullName is the display name used for user links and headings.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Post struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt string
	UserID    int64
	Tags      []Tag
}

// FriendlyDate reformats the sqlite timestamp for display. Falls back to
// the raw value if the stored format is unexpected.
func (p Post) FriendlyDate() string {
	t, err := time.Parse("2006-01-02 15:04:05", p.CreatedAt)
	if err != nil {
		return p.CreatedAt
	}
	return t.Format("Jan 2, 2006, 3:04 PM")
}

type Tag struct {
	ID   int64
	Name string
}
