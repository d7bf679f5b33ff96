package auth

// Action enumerates the operations the authorization policy rules over.
type Action int

const (
	// ActionViewList is the paginated user index.
	ActionViewList Action = iota
	// ActionViewProfile is a single user's profile page.
	ActionViewProfile
	// ActionNew is the blank signup form.
	ActionNew
	// ActionCreate is user registration.
	ActionCreate
	// ActionEdit is the profile edit form.
	ActionEdit
	// ActionUpdate is a profile mutation.
	ActionUpdate
	// ActionDestroy is user deletion.
	ActionDestroy
	// ActionViewFollowing is a user's "following" listing.
	ActionViewFollowing
	// ActionViewFollowers is a user's "followers" listing.
	ActionViewFollowers
	// ActionFollow creates a follow edge from the current user.
	ActionFollow
	// ActionUnfollow removes a follow edge from the current user.
	ActionUnfollow
)

// Decision is the outcome of the authorization policy.
type Decision int

const (
	// Allow lets the request proceed to the directory or graph.
	Allow Decision = iota
	// DenyUnauthenticated is returned when no identity is present; it maps to
	// a redirect to the sign-in path with a "please sign in" notice.
	DenyUnauthenticated
	// DenyForbidden is returned when the identity lacks rights; it maps to a
	// redirect to the application root with no further state change.
	DenyForbidden
)

// Decide is the authorization policy: a pure function of the identity, the
// action, and the target user id. Stores never see a denied request; callers
// must consult Decide before invoking the directory or the follow graph.
//
// Rules, in order:
//  1. Registration (new/create) is open to everyone.
//  2. Every other action requires a non-anonymous identity.
//  3. Edit/update additionally require the identity to be the target user.
//  4. Destroy requires an admin identity.
//  5. Everything else (listings, profiles, follow pages, follow/unfollow)
//     is allowed for any authenticated identity.
func Decide(identity *Identity, action Action, targetUserID int) Decision {
	if action == ActionNew || action == ActionCreate {
		return Allow
	}
	if identity == nil {
		return DenyUnauthenticated
	}
	switch action {
	case ActionEdit, ActionUpdate:
		if identity.ID != targetUserID {
			return DenyForbidden
		}
	case ActionDestroy:
		if !identity.Admin {
			return DenyForbidden
		}
	}
	return Allow
}
