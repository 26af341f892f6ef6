package model

import "time"

// Comment is a reader comment on an article. Replies are one level deep:
// a reply never carries replies of its own.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"likes"`
	Replies   []Comment `json:"replies"`
	Liked     bool      `json:"liked,omitempty"`
}
