package follows

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
)

// PostgresRepository is the pgx-backed Repository implementation. Edge
// uniqueness rides on the composite unique index over
// (follower_id, followed_id); idempotent inserts go through
// ON CONFLICT DO NOTHING rather than a read-then-write.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository on the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, followerID, followedID int) error {
	query := `INSERT INTO follows (follower_id, followed_id)
	          VALUES ($1, $2)
	          ON CONFLICT (follower_id, followed_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, query, followerID, followedID); err != nil {
		return apperror.NewDatabaseError("failed to create follow edge", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, followerID, followedID int) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	if _, err := r.db.Exec(ctx, query, followerID, followedID); err != nil {
		return apperror.NewDatabaseError("failed to delete follow edge", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, followerID, followedID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`
	if err := r.db.QueryRow(ctx, query, followerID, followedID).Scan(&exists); err != nil {
		return false, apperror.NewDatabaseError("failed to check follow edge", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Followers(ctx context.Context, userID, limit, offset int) ([]auth.User, error) {
	query := `SELECT u.id, u.name, u.email, u.admin, u.created_at, u.updated_at
	          FROM follows f
	          JOIN users u ON u.id = f.follower_id
	          WHERE f.followed_id = $1
	          ORDER BY f.created_at DESC, u.id DESC
	          LIMIT $2 OFFSET $3`
	return r.listUsers(ctx, query, userID, limit, offset)
}

func (r *PostgresRepository) Following(ctx context.Context, userID, limit, offset int) ([]auth.User, error) {
	query := `SELECT u.id, u.name, u.email, u.admin, u.created_at, u.updated_at
	          FROM follows f
	          JOIN users u ON u.id = f.followed_id
	          WHERE f.follower_id = $1
	          ORDER BY f.created_at DESC, u.id DESC
	          LIMIT $2 OFFSET $3`
	return r.listUsers(ctx, query, userID, limit, offset)
}

func (r *PostgresRepository) listUsers(ctx context.Context, query string, userID, limit, offset int) ([]auth.User, error) {
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list follow edges", err)
	}
	defer rows.Close()

	var result []auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Admin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan follow row", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read follow rows", err)
	}
	return result, nil
}

func (r *PostgresRepository) FollowersCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM follows WHERE followed_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count followers", err)
	}
	return count, nil
}

func (r *PostgresRepository) FollowingCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count following", err)
	}
	return count, nil
}
