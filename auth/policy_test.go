package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	member := &Identity{ID: 7, Name: "Member", Email: "member@example.com"}
	admin := &Identity{ID: 1, Name: "Admin", Email: "admin@example.com", Admin: true}

	tests := []struct {
		name     string
		identity *Identity
		action   Action
		targetID int
		want     Decision
	}{
		{"signup form open to anonymous", nil, ActionNew, 0, Allow},
		{"registration open to anonymous", nil, ActionCreate, 0, Allow},
		{"registration open to authenticated", member, ActionCreate, 0, Allow},

		{"anonymous cannot view list", nil, ActionViewList, 0, DenyUnauthenticated},
		{"anonymous cannot view profile", nil, ActionViewProfile, 7, DenyUnauthenticated},
		{"anonymous cannot edit", nil, ActionEdit, 7, DenyUnauthenticated},
		{"anonymous cannot update", nil, ActionUpdate, 7, DenyUnauthenticated},
		{"anonymous cannot destroy", nil, ActionDestroy, 7, DenyUnauthenticated},
		{"anonymous cannot view following", nil, ActionViewFollowing, 7, DenyUnauthenticated},
		{"anonymous cannot view followers", nil, ActionViewFollowers, 7, DenyUnauthenticated},
		{"anonymous cannot follow", nil, ActionFollow, 7, DenyUnauthenticated},
		{"anonymous cannot unfollow", nil, ActionUnfollow, 7, DenyUnauthenticated},

		{"member views list", member, ActionViewList, 0, Allow},
		{"member views any profile", member, ActionViewProfile, 99, Allow},
		{"member views any following listing", member, ActionViewFollowing, 99, Allow},
		{"member views any followers listing", member, ActionViewFollowers, 99, Allow},
		{"member follows another user", member, ActionFollow, 99, Allow},
		{"member unfollows another user", member, ActionUnfollow, 99, Allow},

		{"member edits own profile", member, ActionEdit, 7, Allow},
		{"member updates own profile", member, ActionUpdate, 7, Allow},
		{"member cannot edit another profile", member, ActionEdit, 99, DenyForbidden},
		{"member cannot update another profile", member, ActionUpdate, 99, DenyForbidden},
		{"admin cannot update another profile", admin, ActionUpdate, 7, DenyForbidden},

		{"member cannot destroy", member, ActionDestroy, 99, DenyForbidden},
		{"member cannot destroy self via destroy", member, ActionDestroy, 7, DenyForbidden},
		{"admin destroys", admin, ActionDestroy, 7, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.identity, tt.action, tt.targetID))
		})
	}
}
