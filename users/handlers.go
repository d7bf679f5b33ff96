package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/follows"
	"github.com/user/microblog-go/pagination"
	"github.com/user/microblog-go/posts"
)

// Handlers provides the HTTP handlers for the user directory routes. The
// profile page aggregates across the directory, the post feed and the follow
// graph, so the handlers hold all three services.
type Handlers struct {
	service *Service
	posts   *posts.Service
	follows *follows.Service
}

// NewHandlers creates new user directory Handlers.
func NewHandlers(service *Service, postService *posts.Service, followService *follows.Service) *Handlers {
	return &Handlers{service: service, posts: postService, follows: followService}
}

// RegisterRoutes mounts the directory routes on a router scoped to /users.
// Follow-graph routes for /users/{id} are mounted separately by the follows
// package.
func (h *Handlers) RegisterRoutes(r chi.Router, followHandlers *follows.Handlers) {
	r.Get("/", h.HandleList())
	r.Get("/new", h.HandleNew())
	r.Post("/", h.HandleCreate())
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleShow())
		r.Get("/edit", h.HandleEdit())
		r.Put("/", h.HandleUpdate())
		r.Delete("/", h.HandleDestroy())
		followHandlers.RegisterRoutes(r)
	})
}

func targetID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, apperror.NewBadRequestError("invalid user id", err)
	}
	return id, nil
}

// HandleList godoc
// @Summary List users
// @Description Paginated user directory, 30 per page, ordered by id ascending.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Page size (default 30)"
// @Success 200 {object} users.ListResponse
// @Router /users [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.Require(w, r, auth.ActionViewList, 0); !ok {
			return
		}

		page, perPage := pagination.FromRequest(r)
		resp, err := h.service.List(r.Context(), page, perPage)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleNew godoc
// @Summary Signup form
// @Description Returns a blank signup form payload. Registration is open.
// @Tags Users
// @Produce json
// @Success 200 {object} users.FormResponse
// @Router /users/new [get]
func (h *Handlers) HandleNew() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.Require(w, r, auth.ActionNew, 0); !ok {
			return
		}
		auth.WriteJSON(w, http.StatusOK, FormResponse{})
	}
}

// HandleCreate godoc
// @Summary Register a user
// @Description Creates a user from the signup attributes. On success redirects to the root with a welcome notice; on validation failure returns the form payload with field errors and the attempted name/email.
// @Tags Users
// @Accept json
// @Produce json
// @Param signupBody body users.NewUserRequest true "Signup attributes"
// @Success 303 "Redirect to / with welcome flash"
// @Failure 400 {object} users.FormResponse "Validation failed; form redisplay payload"
// @Router /users [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.Require(w, r, auth.ActionCreate, 0); !ok {
			return
		}

		var req NewUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if _, err := h.service.Create(r.Context(), req); err != nil {
			h.writeFormError(w, r, req.Name, req.Email, err)
			return
		}

		auth.Redirect(w, r, auth.RootPath, &auth.Flash{
			Kind:    auth.FlashSuccess,
			Message: "Welcome to the Sample App!",
		})
	}
}

// HandleShow godoc
// @Summary User profile
// @Description The user's profile with a paginated post feed (newest first), the total post count and the follow-graph counts.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param page query int false "Post feed page (default 1)"
// @Success 200 {object} users.ProfileResponse
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *Handlers) HandleShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := targetID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if _, ok := auth.Require(w, r, auth.ActionViewProfile, id); !ok {
			return
		}

		user, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		page, perPage := pagination.FromRequest(r)
		feed, postCount, err := h.posts.Feed(r.Context(), id, page, perPage)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		followersCount, followingCount, err := h.follows.Counts(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, ProfileResponse{
			User:           NewUserResponse(user),
			Posts:          feed,
			PostCount:      postCount,
			FollowersCount: followersCount,
			FollowingCount: followingCount,
			Pagination:     pagination.New(page, perPage, postCount),
		})
	}
}

// HandleEdit godoc
// @Summary Profile edit form
// @Description Returns the edit form payload for the current user's own profile.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} users.FormResponse
// @Router /users/{id}/edit [get]
func (h *Handlers) HandleEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := targetID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if _, ok := auth.Require(w, r, auth.ActionEdit, id); !ok {
			return
		}

		user, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, FormResponse{Name: user.Name, Email: user.Email})
	}
}

// HandleUpdate godoc
// @Summary Update profile
// @Description Updates the current user's own profile. On success redirects to the profile with an updated notice; on validation failure returns the form payload with field errors and the attempted name/email, leaving the record unchanged.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param profileBody body users.UpdateUserRequest true "Profile attributes"
// @Success 303 "Redirect to /users/{id} with updated flash"
// @Failure 400 {object} users.FormResponse "Validation failed; form redisplay payload"
// @Router /users/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := targetID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if _, ok := auth.Require(w, r, auth.ActionUpdate, id); !ok {
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if _, err := h.service.Update(r.Context(), id, req); err != nil {
			h.writeFormError(w, r, req.Name, req.Email, err)
			return
		}

		auth.Redirect(w, r, fmt.Sprintf("/users/%d", id), &auth.Flash{
			Kind:    auth.FlashSuccess,
			Message: "Profile updated.",
		})
	}
}

// HandleDestroy godoc
// @Summary Destroy a user
// @Description Admin-only. Removes the user and cascades removal of their posts and follow edges, then redirects to the user index.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 303 "Redirect to /users with deleted flash"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *Handlers) HandleDestroy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := targetID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if _, ok := auth.Require(w, r, auth.ActionDestroy, id); !ok {
			return
		}

		if err := h.service.Destroy(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.Redirect(w, r, auth.UsersPath, &auth.Flash{
			Kind:    auth.FlashSuccess,
			Message: "User deleted.",
		})
	}
}

// writeFormError renders validation failures as a form-redisplay payload
// echoing the attempted name and email. Other errors take the standard path.
func (h *Handlers) writeFormError(w http.ResponseWriter, r *http.Request, name, email string, err error) {
	appErr, ok := apperror.FromError(err)
	if ok && appErr.Type == apperror.ValidationError {
		auth.WriteJSON(w, appErr.StatusCode(), FormResponse{
			Name:   name,
			Email:  email,
			Errors: appErr.Fields,
		})
		return
	}
	auth.WriteError(w, r, err)
}
