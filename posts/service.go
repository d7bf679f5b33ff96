package posts

import (
	"context"

	"github.com/user/microblog-go/pagination"
)

// Service exposes the post feed and count used for profile display.
type Service struct {
	repo Repository
}

// NewService creates a new post Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Feed returns one page of the author's posts (newest first) together with
// the author's total post count. The count is independent of the pagination
// window.
func (s *Service) Feed(ctx context.Context, authorID, page, perPage int) ([]Post, int, error) {
	page, perPage = pagination.Normalize(page, perPage)

	items, err := s.repo.ListByAuthor(ctx, authorID, perPage, pagination.Offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []Post{}
	}
	return items, count, nil
}

// Count returns the author's total post count.
func (s *Service) Count(ctx context.Context, authorID int) (int, error) {
	return s.repo.CountByAuthor(ctx, authorID)
}
