// Package auth owns identity resolution and the authorization policy: it
// turns a request's bearer token into an Identity (or anonymous) and decides,
// per action and target, whether the request may proceed.
// The User entity lives here so that the feature packages (users, follows,
// posts) can all import it without cycles.
package auth

import "time"

// User represents a user record in the system.
type User struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"-"` // never exposed in API responses
	Admin          bool      `json:"admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Identity is the resolved current user for a request. A nil *Identity means
// the request is anonymous. The Admin flag is loaded from the user record at
// resolution time rather than trusted from token claims, so revoking admin
// takes effect on the next request.
type Identity struct {
	ID    int
	Name  string
	Email string
	Admin bool
}

// IdentityOf builds the request identity for a user record.
func IdentityOf(u *User) *Identity {
	if u == nil {
		return nil
	}
	return &Identity{ID: u.ID, Name: u.Name, Email: u.Email, Admin: u.Admin}
}
