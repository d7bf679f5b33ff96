package follows

import (
	"context"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/pagination"
)

// Service implements the follow graph operations on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new follow-graph Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Follow records that follower follows followed. Following a user twice
// leaves exactly one edge. A self-follow is rejected with an InvalidEdge
// error before any store write.
func (s *Service) Follow(ctx context.Context, followerID, followedID int) error {
	if followerID == followedID {
		return apperror.NewInvalidEdgeError("users cannot follow themselves")
	}
	return s.repo.Insert(ctx, followerID, followedID)
}

// Unfollow removes the edge if present; unfollowing a user who was never
// followed is a no-op.
func (s *Service) Unfollow(ctx context.Context, followerID, followedID int) error {
	return s.repo.Delete(ctx, followerID, followedID)
}

// IsFollowing reports whether follower follows followed.
func (s *Service) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	return s.repo.Exists(ctx, followerID, followedID)
}

// Followers returns one page of the users following userID, most recent
// relationship first, together with the total follower count.
func (s *Service) Followers(ctx context.Context, userID, page, perPage int) (*ListResponse, error) {
	page, perPage = pagination.Normalize(page, perPage)

	users, err := s.repo.Followers(ctx, userID, perPage, pagination.Offset(page, perPage))
	if err != nil {
		return nil, err
	}
	count, err := s.repo.FollowersCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newListResponse(userID, users, pagination.New(page, perPage, count)), nil
}

// Following returns one page of the users userID follows, most recent
// relationship first, together with the total following count.
func (s *Service) Following(ctx context.Context, userID, page, perPage int) (*ListResponse, error) {
	page, perPage = pagination.Normalize(page, perPage)

	users, err := s.repo.Following(ctx, userID, perPage, pagination.Offset(page, perPage))
	if err != nil {
		return nil, err
	}
	count, err := s.repo.FollowingCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newListResponse(userID, users, pagination.New(page, perPage, count)), nil
}

// Counts returns the follower and following totals for a user, for profile
// display.
func (s *Service) Counts(ctx context.Context, userID int) (followers int, following int, err error) {
	followers, err = s.repo.FollowersCount(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err = s.repo.FollowingCount(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
