package posts

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/microblog-go/apperror"
)

// PostgresRepository is the pgx-backed Repository implementation.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository on the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID, limit, offset int) ([]Post, error) {
	query := `SELECT id, author_id, content, created_at
	          FROM posts
	          WHERE author_id = $1
	          ORDER BY created_at DESC, id DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	defer rows.Close()

	var result []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan post row", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read post rows", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count posts", err)
	}
	return count, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *Post) error {
	query := `INSERT INTO posts (author_id, content)
	          VALUES ($1, $2)
	          RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, post.AuthorID, post.Content).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return apperror.NewDatabaseError("failed to create post", err)
	}
	return nil
}
