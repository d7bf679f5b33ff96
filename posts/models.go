// Package posts holds the post records referenced by user profiles. The core
// does not own a posting surface; it only needs each user's post count, a
// paginated feed for profile display, and removal as part of the user
// destroy cascade.
package posts

import "time"

// Post is a short message authored by exactly one user.
type Post struct {
	ID        int       `json:"id"`
	AuthorID  int       `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
