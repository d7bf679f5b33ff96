// Package store provides an in-memory implementation of every repository
// interface in the application over a single mutex-guarded dataset. It keeps
// the cross-record invariants (cascade on destroy, edge uniqueness, listing
// order) observable without PostgreSQL, and backs the handler and service
// tests. Semantics mirror the pgx implementations exactly.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/follows"
	"github.com/user/microblog-go/posts"
	"github.com/user/microblog-go/users"
)

var (
	_ users.Repository   = (*MemoryUserRepository)(nil)
	_ auth.UserFinder    = (*MemoryUserRepository)(nil)
	_ follows.Repository = (*MemoryFollowRepository)(nil)
	_ posts.Repository   = (*MemoryPostRepository)(nil)
)

type edgeKey struct {
	followerID int
	followedID int
}

// Memory is the shared in-memory dataset. Repository views over it are
// obtained with Users, Posts and Follows; all of them lock the same mutex,
// so every mutating operation is atomic across record kinds exactly like a
// SQL transaction. The destroy cascade in particular can never be observed
// half-applied.
type Memory struct {
	mu sync.RWMutex

	users      map[int]auth.User
	nextUserID int

	posts      map[int]posts.Post
	nextPostID int

	edges      map[edgeKey]follows.Edge
	nextEdgeID int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int]auth.User),
		nextUserID: 1,
		posts:      make(map[int]posts.Post),
		nextPostID: 1,
		edges:      make(map[edgeKey]follows.Edge),
		nextEdgeID: 1,
	}
}

// Users returns the users.Repository (and auth.UserFinder) view.
func (m *Memory) Users() *MemoryUserRepository { return &MemoryUserRepository{m: m} }

// Posts returns the posts.Repository view.
func (m *Memory) Posts() *MemoryPostRepository { return &MemoryPostRepository{m: m} }

// Follows returns the follows.Repository view.
func (m *Memory) Follows() *MemoryFollowRepository { return &MemoryFollowRepository{m: m} }

// MemoryUserRepository implements users.Repository over the shared dataset.
type MemoryUserRepository struct {
	m *Memory
}

// List returns users ordered by id ascending.
func (r *MemoryUserRepository) List(ctx context.Context, limit, offset int) ([]auth.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	all := make([]auth.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return window(all, limit, offset), nil
}

func (r *MemoryUserRepository) Count(ctx context.Context) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return len(r.m.users), nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id int) (*auth.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.NewNotFoundError(fmt.Sprintf("user with email '%s' not found", email), nil)
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *auth.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.users {
		if existing.Email == user.Email {
			return apperror.NewConflictError("email has already been taken", nil)
		}
	}

	user.ID = r.m.nextUserID
	r.m.nextUserID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.m.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *auth.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[user.ID]; !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", user.ID), nil)
	}
	for _, existing := range r.m.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return apperror.NewConflictError("email has already been taken", nil)
		}
	}

	user.UpdatedAt = time.Now()
	r.m.users[user.ID] = *user
	return nil
}

// Destroy removes the user, their posts and every follow edge referencing
// them, all under one lock so the cascade is never partially applied.
func (r *MemoryUserRepository) Destroy(ctx context.Context, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[id]; !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}

	for postID, p := range r.m.posts {
		if p.AuthorID == id {
			delete(r.m.posts, postID)
		}
	}
	for key := range r.m.edges {
		if key.followerID == id || key.followedID == id {
			delete(r.m.edges, key)
		}
	}
	delete(r.m.users, id)
	return nil
}

// MemoryFollowRepository implements follows.Repository over the shared
// dataset.
type MemoryFollowRepository struct {
	m *Memory
}

func (r *MemoryFollowRepository) Insert(ctx context.Context, followerID, followedID int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	key := edgeKey{followerID: followerID, followedID: followedID}
	if _, ok := r.m.edges[key]; ok {
		return nil // idempotent
	}
	r.m.edges[key] = follows.Edge{
		ID:         r.m.nextEdgeID,
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now(),
	}
	r.m.nextEdgeID++
	return nil
}

func (r *MemoryFollowRepository) Delete(ctx context.Context, followerID, followedID int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	delete(r.m.edges, edgeKey{followerID: followerID, followedID: followedID})
	return nil
}

func (r *MemoryFollowRepository) Exists(ctx context.Context, followerID, followedID int) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	_, ok := r.m.edges[edgeKey{followerID: followerID, followedID: followedID}]
	return ok, nil
}

// Followers returns users ordered by edge created_at descending, ties broken
// by edge id descending (insertion order), matching the SQL implementation's
// most-recent-relationship-first contract.
func (r *MemoryFollowRepository) Followers(ctx context.Context, userID, limit, offset int) ([]auth.User, error) {
	return r.edgeUsers(userID, limit, offset, func(e follows.Edge) (bool, int) {
		return e.FollowedID == userID, e.FollowerID
	})
}

func (r *MemoryFollowRepository) Following(ctx context.Context, userID, limit, offset int) ([]auth.User, error) {
	return r.edgeUsers(userID, limit, offset, func(e follows.Edge) (bool, int) {
		return e.FollowerID == userID, e.FollowedID
	})
}

func (r *MemoryFollowRepository) edgeUsers(userID, limit, offset int, match func(follows.Edge) (bool, int)) ([]auth.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	type hit struct {
		edge  follows.Edge
		other int
	}
	var hits []hit
	for _, e := range r.m.edges {
		if ok, other := match(e); ok {
			hits = append(hits, hit{edge: e, other: other})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].edge.CreatedAt.Equal(hits[j].edge.CreatedAt) {
			return hits[i].edge.CreatedAt.After(hits[j].edge.CreatedAt)
		}
		return hits[i].edge.ID > hits[j].edge.ID
	})

	var result []auth.User
	for _, h := range hits {
		if u, ok := r.m.users[h.other]; ok {
			result = append(result, u)
		}
	}
	return window(result, limit, offset), nil
}

func (r *MemoryFollowRepository) FollowersCount(ctx context.Context, userID int) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	count := 0
	for key := range r.m.edges {
		if key.followedID == userID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryFollowRepository) FollowingCount(ctx context.Context, userID int) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	count := 0
	for key := range r.m.edges {
		if key.followerID == userID {
			count++
		}
	}
	return count, nil
}

// MemoryPostRepository implements posts.Repository over the shared dataset.
type MemoryPostRepository struct {
	m *Memory
}

// ListByAuthor returns the author's posts ordered by created_at descending,
// ties broken by id descending.
func (r *MemoryPostRepository) ListByAuthor(ctx context.Context, authorID, limit, offset int) ([]posts.Post, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var result []posts.Post
	for _, p := range r.m.posts {
		if p.AuthorID == authorID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return window(result, limit, offset), nil
}

func (r *MemoryPostRepository) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	count := 0
	for _, p := range r.m.posts {
		if p.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryPostRepository) Create(ctx context.Context, post *posts.Post) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	post.ID = r.m.nextPostID
	r.m.nextPostID++
	post.CreatedAt = time.Now()
	r.m.posts[post.ID] = *post
	return nil
}

// window applies limit/offset to a sorted slice.
func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
