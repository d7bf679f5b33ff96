package follows

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/pagination"
)

// UserGetter is the narrow view of the user directory the follow handlers
// need: confirming that a target user exists before touching the graph.
type UserGetter interface {
	FindByID(ctx context.Context, id int) (*auth.User, error)
}

// Handlers provides the HTTP handlers for the follow graph routes mounted
// under /users/{id}.
type Handlers struct {
	service *Service
	users   UserGetter
}

// NewHandlers creates new follow-graph Handlers.
func NewHandlers(service *Service, users UserGetter) *Handlers {
	return &Handlers{service: service, users: users}
}

// RegisterRoutes mounts the follow-graph routes on a router already scoped to
// /users/{id}.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/following", h.HandleFollowing())
	r.Get("/followers", h.HandleFollowers())
	r.Post("/follow", h.HandleFollow())
	r.Delete("/follow", h.HandleUnfollow())
}

func targetID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, apperror.NewBadRequestError("invalid user id", err)
	}
	return id, nil
}

// HandleFollowing godoc
// @Summary Users a user is following
// @Description Paginated list of the users the target user follows, most recent relationship first.
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Page size (default 30)"
// @Success 200 {object} follows.ListResponse
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id}/following [get]
func (h *Handlers) HandleFollowing() http.HandlerFunc {
	return h.handleListing(auth.ActionViewFollowing, func(ctx context.Context, userID, page, perPage int) (*ListResponse, error) {
		return h.service.Following(ctx, userID, page, perPage)
	})
}

// HandleFollowers godoc
// @Summary A user's followers
// @Description Paginated list of the users following the target user, most recent relationship first.
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Page size (default 30)"
// @Success 200 {object} follows.ListResponse
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id}/followers [get]
func (h *Handlers) HandleFollowers() http.HandlerFunc {
	return h.handleListing(auth.ActionViewFollowers, func(ctx context.Context, userID, page, perPage int) (*ListResponse, error) {
		return h.service.Followers(ctx, userID, page, perPage)
	})
}

func (h *Handlers) handleListing(action auth.Action, list func(ctx context.Context, userID, page, perPage int) (*ListResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := targetID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if _, ok := auth.Require(w, r, action, id); !ok {
			return
		}

		// A listing for a user that does not exist is a 404, never an empty page.
		if _, err := h.users.FindByID(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		page, perPage := pagination.FromRequest(r)
		resp, err := list(r.Context(), id, page, perPage)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleFollow godoc
// @Summary Follow a user
// @Description Creates a follow edge from the current user to the target. Following a user twice is a no-op; following yourself is rejected.
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID to follow"
// @Success 200 {object} follows.StatusResponse
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Failure 422 {object} apperror.ErrorResponse "Self-follow rejected"
// @Router /users/{id}/follow [post]
func (h *Handlers) HandleFollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := targetID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		identity, ok := auth.Require(w, r, auth.ActionFollow, id)
		if !ok {
			return
		}

		if _, err := h.users.FindByID(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Follow(r.Context(), identity.ID, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.writeStatus(w, r, id, true)
	}
}

// HandleUnfollow godoc
// @Summary Unfollow a user
// @Description Removes the follow edge from the current user to the target. Unfollowing a user who was never followed is a no-op.
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID to unfollow"
// @Success 200 {object} follows.StatusResponse
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id}/follow [delete]
func (h *Handlers) HandleUnfollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := targetID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		identity, ok := auth.Require(w, r, auth.ActionUnfollow, id)
		if !ok {
			return
		}

		if _, err := h.users.FindByID(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Unfollow(r.Context(), identity.ID, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.writeStatus(w, r, id, false)
	}
}

func (h *Handlers) writeStatus(w http.ResponseWriter, r *http.Request, followedID int, following bool) {
	count, err := h.service.repo.FollowersCount(r.Context(), followedID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, StatusResponse{
		FollowedID:     followedID,
		Following:      following,
		FollowersCount: count,
	})
}
