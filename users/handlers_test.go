package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/config"
	"github.com/user/microblog-go/follows"
	"github.com/user/microblog-go/posts"
	"github.com/user/microblog-go/store"
	"github.com/user/microblog-go/users"
)

// testApp wires the directory routes over the in-memory store the same way
// main does over PostgreSQL.
type testApp struct {
	router *chi.Mux
	mem    *store.Memory
	auth   *auth.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mem := store.NewMemory()
	cfg := &config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
	}

	authService := auth.NewService(mem.Users(), *cfg)
	userService := users.NewService(mem.Users())
	postService := posts.NewService(mem.Posts())
	followService := follows.NewService(mem.Follows())

	followHandlers := follows.NewHandlers(followService, mem.Users())
	userHandlers := users.NewHandlers(userService, postService, followService)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Use(auth.ResolveIdentity(cfg, mem.Users()))
		userHandlers.RegisterRoutes(r, followHandlers)
	})

	return &testApp{router: r, mem: mem, auth: authService}
}

func (a *testApp) seed(t *testing.T, name, email string, admin bool) *auth.User {
	t.Helper()
	u := &auth.User{Name: name, Email: email, PasswordDigest: "x", Admin: admin}
	require.NoError(t, a.mem.Users().Create(context.Background(), u))
	return u
}

// do performs a request, optionally authenticated as userID (0 = anonymous).
func (a *testApp) do(t *testing.T, method, path string, userID int, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		tokens, err := a.auth.GenerateTokens(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) *auth.Flash {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.FlashCookieName {
			f, ok := auth.ReadFlash(c.Value)
			require.True(t, ok)
			return f
		}
	}
	return nil
}

func TestIndexRequiresSignIn(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "Someone", "someone@example.com", false)

	rec := app.do(t, http.MethodGet, "/users", 0, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.SignInPath, rec.Header().Get("Location"))

	f := flashOf(t, rec)
	require.NotNil(t, f)
	assert.Equal(t, "Please sign in.", f.Message)
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t)
	for i := 1; i <= 33; i++ {
		app.seed(t, fmt.Sprintf("User %02d", i), fmt.Sprintf("user%02d@example.com", i), false)
	}

	rec := app.do(t, http.MethodGet, "/users", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page1 users.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page1))
	assert.Len(t, page1.Users, 30)
	assert.Equal(t, 33, page1.Pagination.TotalCount)
	assert.True(t, page1.Pagination.HasNext)
	assert.False(t, page1.Pagination.HasPrev)

	rec = app.do(t, http.MethodGet, "/users?page=2", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page2 users.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page2))
	assert.Len(t, page2.Users, 3)
	assert.False(t, page2.Pagination.HasNext)
	assert.True(t, page2.Pagination.HasPrev)
}

func TestSignup(t *testing.T) {
	t.Run("valid signup creates the user and lands on root", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(t, http.MethodPost, "/users", 0, users.NewUserRequest{
			Name:                 "Example User",
			Email:                "user@example.com",
			Password:             "foobar",
			PasswordConfirmation: "foobar",
		})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.RootPath, rec.Header().Get("Location"))

		f := flashOf(t, rec)
		require.NotNil(t, f)
		assert.Equal(t, "Welcome to the Sample App!", f.Message)

		count, err := app.mem.Users().Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("invalid signup redisplays the form with the attempted input", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(t, http.MethodPost, "/users", 0, users.NewUserRequest{
			Name:  "Attempted Name",
			Email: "bad-email",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var form users.FormResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
		assert.Equal(t, "Attempted Name", form.Name)
		assert.Equal(t, "bad-email", form.Email)
		assert.NotEmpty(t, form.Errors["email"])
		assert.NotEmpty(t, form.Errors["password"])

		count, err := app.mem.Users().Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count, "a failed signup writes nothing")
	})
}

func TestShowProfile(t *testing.T) {
	app := newTestApp(t)
	owner := app.seed(t, "Owner", "owner@example.com", false)
	viewer := app.seed(t, "Viewer", "viewer@example.com", false)

	ctx := context.Background()
	for i := 1; i <= 35; i++ {
		require.NoError(t, app.mem.Posts().Create(ctx, &posts.Post{
			AuthorID: owner.ID,
			Content:  fmt.Sprintf("post %02d", i),
		}))
	}
	require.NoError(t, app.mem.Follows().Insert(ctx, viewer.ID, owner.ID))

	t.Run("any signed-in user sees the profile", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/users/%d", owner.ID), viewer.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var profile users.ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
		assert.Equal(t, owner.ID, profile.User.ID)
		assert.Len(t, profile.Posts, 30, "feed is windowed")
		assert.Equal(t, 35, profile.PostCount, "count covers all posts, not the window")
		assert.Equal(t, 1, profile.FollowersCount)
		assert.Zero(t, profile.FollowingCount)
		assert.Equal(t, "post 35", profile.Posts[0].Content, "newest first")
	})

	t.Run("anonymous is redirected", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/users/%d", owner.ID), 0, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.SignInPath, rec.Header().Get("Location"))
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/users/999", viewer.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	attrs := users.UpdateUserRequest{Name: "Changed", Email: "changed@example.com"}

	t.Run("owner updates and is sent back to the profile", func(t *testing.T) {
		app := newTestApp(t)
		owner := app.seed(t, "Owner", "owner@example.com", false)

		rec := app.do(t, http.MethodPut, fmt.Sprintf("/users/%d", owner.ID), owner.ID, attrs)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, fmt.Sprintf("/users/%d", owner.ID), rec.Header().Get("Location"))

		f := flashOf(t, rec)
		require.NotNil(t, f)
		assert.Equal(t, "Profile updated.", f.Message)

		stored, err := app.mem.Users().FindByID(context.Background(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "Changed", stored.Name)
	})

	t.Run("anonymous is redirected to sign-in and nothing changes", func(t *testing.T) {
		app := newTestApp(t)
		owner := app.seed(t, "Owner", "owner@example.com", false)

		rec := app.do(t, http.MethodPut, fmt.Sprintf("/users/%d", owner.ID), 0, attrs)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.SignInPath, rec.Header().Get("Location"))

		stored, err := app.mem.Users().FindByID(context.Background(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "Owner", stored.Name)
	})

	t.Run("another user is bounced to root and nothing changes", func(t *testing.T) {
		app := newTestApp(t)
		owner := app.seed(t, "Owner", "owner@example.com", false)
		intruder := app.seed(t, "Intruder", "intruder@example.com", false)

		rec := app.do(t, http.MethodPut, fmt.Sprintf("/users/%d", owner.ID), intruder.ID, attrs)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.RootPath, rec.Header().Get("Location"))
		assert.Nil(t, flashOf(t, rec), "forbidden carries no flash")

		stored, err := app.mem.Users().FindByID(context.Background(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "Owner", stored.Name)
	})

	t.Run("invalid attributes redisplay the form unchanged", func(t *testing.T) {
		app := newTestApp(t)
		owner := app.seed(t, "Owner", "owner@example.com", false)

		rec := app.do(t, http.MethodPut, fmt.Sprintf("/users/%d", owner.ID), owner.ID,
			users.UpdateUserRequest{Name: "", Email: "bad"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		stored, err := app.mem.Users().FindByID(context.Background(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "Owner", stored.Name)
	})
}

func TestEditForm(t *testing.T) {
	app := newTestApp(t)
	owner := app.seed(t, "Owner", "owner@example.com", false)
	other := app.seed(t, "Other", "other@example.com", false)

	t.Run("owner gets the prefilled form", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/users/%d/edit", owner.ID), owner.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var form users.FormResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
		assert.Equal(t, "Owner", form.Name)
		assert.Equal(t, "owner@example.com", form.Email)
	})

	t.Run("another user is bounced to root", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/users/%d/edit", owner.ID), other.ID, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.RootPath, rec.Header().Get("Location"))
	})
}

func TestDestroyUser(t *testing.T) {
	t.Run("admin destroy cascades and lands on the index", func(t *testing.T) {
		app := newTestApp(t)
		admin := app.seed(t, "Admin", "admin@example.com", true)
		victim := app.seed(t, "Victim", "victim@example.com", false)
		ctx := context.Background()

		require.NoError(t, app.mem.Posts().Create(ctx, &posts.Post{AuthorID: victim.ID, Content: "bye"}))
		require.NoError(t, app.mem.Follows().Insert(ctx, admin.ID, victim.ID))

		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", victim.ID), admin.ID, nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.UsersPath, rec.Header().Get("Location"))

		f := flashOf(t, rec)
		require.NotNil(t, f)
		assert.Equal(t, "User deleted.", f.Message)

		count, err := app.mem.Users().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		followers, err := app.mem.Follows().FollowersCount(ctx, victim.ID)
		require.NoError(t, err)
		assert.Zero(t, followers)
	})

	t.Run("non-admin is bounced to root and the user survives", func(t *testing.T) {
		app := newTestApp(t)
		member := app.seed(t, "Member", "member@example.com", false)
		victim := app.seed(t, "Victim", "victim@example.com", false)

		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", victim.ID), member.ID, nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.RootPath, rec.Header().Get("Location"))

		count, err := app.mem.Users().Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("anonymous is redirected to sign-in", func(t *testing.T) {
		app := newTestApp(t)
		victim := app.seed(t, "Victim", "victim@example.com", false)

		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", victim.ID), 0, nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.SignInPath, rec.Header().Get("Location"))

		count, err := app.mem.Users().Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
