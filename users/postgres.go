package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// PostgresRepository is the pgx-backed Repository implementation.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository on the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]auth.User, error) {
	query := `SELECT id, name, email, admin, created_at, updated_at
	          FROM users
	          ORDER BY id ASC
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	var result []auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Admin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user row", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read user rows", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, apperror.NewDatabaseError("failed to count users", err)
	}
	return count, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (*auth.User, error) {
	query := `SELECT id, name, email, password_digest, admin, created_at, updated_at
	          FROM users WHERE id = $1`
	return r.findOne(ctx, query, id, fmt.Sprintf("user with ID %d not found", id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT id, name, email, password_digest, admin, created_at, updated_at
	          FROM users WHERE email = $1`
	return r.findOne(ctx, query, strings.ToLower(email), fmt.Sprintf("user with email '%s' not found", email))
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg interface{}, notFoundMsg string) (*auth.User, error) {
	var u auth.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordDigest, &u.Admin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(notFoundMsg, nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return &u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *auth.User) error {
	query := `INSERT INTO users (name, email, password_digest, admin)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordDigest, user.Admin).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "email") {
			return apperror.NewConflictError("email has already been taken", nil)
		}
		return apperror.NewDatabaseError("failed to create user", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *auth.User) error {
	query := `UPDATE users
	          SET name = $1, email = $2, password_digest = $3, updated_at = now()
	          WHERE id = $4
	          RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordDigest, user.ID).
		Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", user.ID), nil)
		}
		if isUniqueViolation(err, "email") {
			return apperror.NewConflictError("email has already been taken", nil)
		}
		return apperror.NewDatabaseError("failed to update user", err)
	}
	return nil
}

// Destroy removes the user and everything referencing them in one
// transaction: posts authored by the user, follow edges in both directions,
// then the user row. The cascade is spelled out statement by statement rather
// than delegated to referential-integrity actions so the guarantee holds on
// any storage engine.
func (r *PostgresRepository) Destroy(ctx context.Context, id int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.NewDatabaseError("failed to begin destroy transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE author_id = $1`, id); err != nil {
		return apperror.NewDatabaseError("failed to delete user posts", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 OR followed_id = $1`, id); err != nil {
		return apperror.NewDatabaseError("failed to delete user follow edges", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewDatabaseError("failed to commit destroy transaction", err)
	}
	return nil
}

func isUniqueViolation(err error, constraintPart string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgUniqueViolation &&
		strings.Contains(pgErr.ConstraintName, constraintPart)
}
