package follows

import (
	"context"

	"github.com/user/microblog-go/auth"
)

// Repository is the persistence interface for the follow graph.
//
// Listing order: both Followers and Following return users ordered by the
// edge's created_at descending (most recent relationship first), with ties
// broken by the related user's id descending. The order is part of the
// contract; pagination depends on it.
type Repository interface {
	// Insert records that follower follows followed. Inserting an edge that
	// already exists is a no-op, not an error.
	Insert(ctx context.Context, followerID, followedID int) error
	// Delete removes the edge if present; removing a missing edge is a no-op.
	Delete(ctx context.Context, followerID, followedID int) error
	// Exists reports whether follower follows followed.
	Exists(ctx context.Context, followerID, followedID int) (bool, error)
	// Followers returns the users following userID.
	Followers(ctx context.Context, userID, limit, offset int) ([]auth.User, error)
	// Following returns the users userID follows.
	Following(ctx context.Context, userID, limit, offset int) ([]auth.User, error)
	// FollowersCount returns how many users follow userID.
	FollowersCount(ctx context.Context, userID int) (int, error)
	// FollowingCount returns how many users userID follows.
	FollowingCount(ctx context.Context, userID int) (int, error)
}
