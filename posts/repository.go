package posts

import "context"

// Repository is the persistence interface for post records.
type Repository interface {
	// ListByAuthor returns the author's posts ordered by created_at
	// descending, ties broken by id descending (newest first).
	ListByAuthor(ctx context.Context, authorID, limit, offset int) ([]Post, error)
	// CountByAuthor returns the author's total post count, independent of any
	// pagination window.
	CountByAuthor(ctx context.Context, authorID int) (int, error)
	// Create inserts a post and fills ID/CreatedAt.
	Create(ctx context.Context, post *Post) error
}
