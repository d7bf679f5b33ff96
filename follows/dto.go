package follows

import (
	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/pagination"
)

// ListResponse is one page of a follower or following listing.
type ListResponse struct {
	UserID     int                   `json:"user_id"`
	Users      []auth.User           `json:"users"`
	Pagination pagination.Pagination `json:"pagination"`
}

func newListResponse(userID int, users []auth.User, p pagination.Pagination) *ListResponse {
	if users == nil {
		users = []auth.User{}
	}
	return &ListResponse{UserID: userID, Users: users, Pagination: p}
}

// StatusResponse reports the relationship between the current user and a
// target after a follow or unfollow action.
type StatusResponse struct {
	FollowedID     int  `json:"followed_id"`
	Following      bool `json:"following"`
	FollowersCount int  `json:"followers_count"`
}
