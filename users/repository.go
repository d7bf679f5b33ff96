// Package users implements the user directory: paginated listing and lookup
// of user records, validated registration and profile mutation, and the
// admin-only destroy with its explicit cascade. Handlers in this package run
// every action through the authorization policy before touching the store.
package users

import (
	"context"

	"github.com/user/microblog-go/auth"
)

// Repository is the narrow persistence interface the directory is built on.
// It deliberately also satisfies auth.UserFinder so identity resolution and
// login reuse the same storage implementation.
type Repository interface {
	// List returns users ordered by id ascending. The ordering is part of the
	// contract: pagination is only correct over a stable, deterministic order.
	List(ctx context.Context, limit, offset int) ([]auth.User, error)
	// Count returns the total number of users, independent of pagination.
	Count(ctx context.Context) (int, error)
	// FindByID returns the user or a NotFound error.
	FindByID(ctx context.Context, id int) (*auth.User, error)
	// FindByEmail returns the user or a NotFound error. Lookup is
	// case-insensitive on the stored lowercase email.
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	// Create inserts the user and fills ID/CreatedAt/UpdatedAt. A duplicate
	// email yields a Conflict error and no record.
	Create(ctx context.Context, user *auth.User) error
	// Update persists name, email and password digest for user.ID. A
	// duplicate email yields a Conflict error and leaves the record unchanged.
	Update(ctx context.Context, user *auth.User) error
	// Destroy removes the user and cascades: the user's posts, every follow
	// edge referencing the user (as follower and as followed), then the user
	// row, all inside a single transaction. A missing user yields NotFound
	// and nothing is removed.
	Destroy(ctx context.Context, id int) error
}
