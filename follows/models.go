// Package follows implements the directed follow graph between users: edge
// creation and removal, existence checks, and the paginated follower and
// following listings shown on profile pages.
package follows

import "time"

// Edge is a directed follow relationship: the follower follows the followed.
// At most one edge exists per ordered pair, and a user never follows
// themselves; both invariants are enforced by the store (composite unique
// index and check constraint) and by the service before any write.
type Edge struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"follower_id"`
	FollowedID int       `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}
