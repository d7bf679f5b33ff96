package follows_test

import (
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
	"github.com/user/microblog-go/store"
)

type graphApp struct {
	router  *chi.Mux
	mem     *store.Memory
	auth    *auth.Service
	service *follows.Service
}

func newGraphApp(t *testing.T) *graphApp {
	t.Helper()

	mem := store.NewMemory()
	cfg := &config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
	}

	authService := auth.NewService(mem.Users(), *cfg)
	followService := follows.NewService(mem.Follows())
	followHandlers := follows.NewHandlers(followService, mem.Users())

	r := chi.NewRouter()
	r.Route("/users/{id}", func(r chi.Router) {
		r.Use(auth.ResolveIdentity(cfg, mem.Users()))
		followHandlers.RegisterRoutes(r)
	})

	return &graphApp{router: r, mem: mem, auth: authService, service: followService}
}

func (a *graphApp) do(t *testing.T, method, path string, userID int) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		tokens, err := a.auth.GenerateTokens(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestFollowEndpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("follow creates the edge and reports the count", func(t *testing.T) {
		app := newGraphApp(t)
		alice := seedUser(t, app.mem, "alice")
		bob := seedUser(t, app.mem, "bob")

		rec := app.do(t, http.MethodPost, fmt.Sprintf("/users/%d/follow", bob.ID), alice.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		var status follows.StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, bob.ID, status.FollowedID)
		assert.True(t, status.Following)
		assert.Equal(t, 1, status.FollowersCount)

		following, err := app.service.IsFollowing(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, following)
	})

	t.Run("double follow stays at one edge", func(t *testing.T) {
		app := newGraphApp(t)
		alice := seedUser(t, app.mem, "alice")
		bob := seedUser(t, app.mem, "bob")

		app.do(t, http.MethodPost, fmt.Sprintf("/users/%d/follow", bob.ID), alice.ID)
		rec := app.do(t, http.MethodPost, fmt.Sprintf("/users/%d/follow", bob.ID), alice.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		var status follows.StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, 1, status.FollowersCount)
	})

	t.Run("self-follow is unprocessable", func(t *testing.T) {
		app := newGraphApp(t)
		alice := seedUser(t, app.mem, "alice")

		rec := app.do(t, http.MethodPost, fmt.Sprintf("/users/%d/follow", alice.ID), alice.ID)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		count, err := app.mem.Follows().FollowersCount(ctx, alice.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("following a missing user is not found", func(t *testing.T) {
		app := newGraphApp(t)
		alice := seedUser(t, app.mem, "alice")

		rec := app.do(t, http.MethodPost, "/users/999/follow", alice.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("anonymous is redirected to sign-in", func(t *testing.T) {
		app := newGraphApp(t)
		bob := seedUser(t, app.mem, "bob")

		rec := app.do(t, http.MethodPost, fmt.Sprintf("/users/%d/follow", bob.ID), 0)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.SignInPath, rec.Header().Get("Location"))

		count, err := app.mem.Follows().FollowersCount(ctx, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestUnfollowEndpoint(t *testing.T) {
	app := newGraphApp(t)
	alice := seedUser(t, app.mem, "alice")
	bob := seedUser(t, app.mem, "bob")

	require.NoError(t, app.service.Follow(context.Background(), alice.ID, bob.ID))

	rec := app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d/follow", bob.ID), alice.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var status follows.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Following)
	assert.Zero(t, status.FollowersCount)

	t.Run("unfollowing again is still ok", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d/follow", bob.ID), alice.ID)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestListingEndpoints(t *testing.T) {
	app := newGraphApp(t)
	ctx := context.Background()

	target := seedUser(t, app.mem, "target")
	fan := seedUser(t, app.mem, "fan")
	idol := seedUser(t, app.mem, "idol")

	require.NoError(t, app.service.Follow(ctx, fan.ID, target.ID))
	require.NoError(t, app.service.Follow(ctx, target.ID, idol.ID))

	t.Run("followers listing is visible to any signed-in user", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/users/%d/followers", target.ID), idol.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp follows.ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, target.ID, resp.UserID)
		require.Len(t, resp.Users, 1)
		assert.Equal(t, fan.ID, resp.Users[0].ID)
	})

	t.Run("following listing is visible to any signed-in user", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/users/%d/following", target.ID), fan.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp follows.ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Users, 1)
		assert.Equal(t, idol.ID, resp.Users[0].ID)
	})

	t.Run("listing for a missing user is not found", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/users/999/followers", fan.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("anonymous is redirected to sign-in", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/users/%d/followers", target.ID), 0)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, auth.SignInPath, rec.Header().Get("Location"))
	})
}
