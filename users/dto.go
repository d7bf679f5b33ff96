package users

import (
	"time"

	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/pagination"
	"github.com/user/microblog-go/posts"
)

// NewUserRequest carries the registration attributes.
type NewUserRequest struct {
	Name                 string `json:"name" validate:"required,max=50" example:"New User"`
	Email                string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password             string `json:"password" validate:"required,min=6,max=40" example:"foobar"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password" example:"foobar"`
}

// UpdateUserRequest carries the profile-edit attributes. Name and email are
// always required; the password is changed only when provided.
type UpdateUserRequest struct {
	Name                 string `json:"name" validate:"required,max=50"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"omitempty,min=6,max=40"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

// UserResponse is the public view of a user record.
type UserResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse maps a user record to its public view.
func NewUserResponse(u *auth.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}

// ListResponse is the paginated user index payload, ordered by id ascending.
type ListResponse struct {
	Users      []UserResponse        `json:"users"`
	Pagination pagination.Pagination `json:"pagination"`
}

// ProfileResponse is the profile page payload: the user, their paginated
// posts (most recent first), the post count and the follow-graph counts.
type ProfileResponse struct {
	User           UserResponse          `json:"user"`
	Posts          []posts.Post          `json:"posts"`
	PostCount      int                   `json:"post_count"`
	FollowersCount int                   `json:"followers_count"`
	FollowingCount int                   `json:"following_count"`
	Pagination     pagination.Pagination `json:"pagination"`
}

// FormResponse is the signup/edit form payload. On a failed create or update
// it echoes the attempted name and email for redisplay, with the field errors
// attached; the password is never echoed.
type FormResponse struct {
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Errors map[string]string `json:"errors,omitempty"`
}
