package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

type scanner interface{ Scan(dest ...any) error }

// userViewCols selects a user plus is_subscribed for the viewer bound to $1.
const userViewCols = `u.id, u.email, u.username, u.first_name, u.last_name, u.created_at,
EXISTS (SELECT 1 FROM subscriptions s WHERE s.user_id=$1 AND s.author_id=u.id)`

func scanUserView(row scanner) (model.UserView, error) {
	var v model.UserView
	err := row.Scan(&v.ID, &v.Email, &v.Username, &v.FirstName, &v.LastName, &v.CreatedAt, &v.IsSubscribed)
	return v, err
}

// Create inserts a new user row and fills ID and CreatedAt.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (email, username, first_name, last_name, pwd_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.Email, u.Username, u.FirstName, u.LastName, u.PwdHash).
		Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		field := "email"
		if strings.Contains(constraintOf(err), "username") {
			field = "username"
		}
		return errs.Field(field, errs.ErrAlreadyExists)
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
SELECT id, email, username, first_name, last_name, pwd_hash, created_at
FROM users WHERE id=$1`
	return r.getOne(ctx, q, id)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, email, username, first_name, last_name, pwd_hash, created_at
FROM users WHERE lower(email)=lower($1)`
	return r.getOne(ctx, q, email)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PwdHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// View loads a user with the viewer's subscription flag.
func (r *UserRepo) View(ctx context.Context, viewerID, id int64) (*model.UserView, error) {
	q := `SELECT ` + userViewCols + ` FROM users u WHERE u.id=$2`
	v, err := scanUserView(r.db.Pool.QueryRow(ctx, q, viewerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// List returns users ordered by id.
func (r *UserRepo) List(ctx context.Context, viewerID int64, limit, offset int) ([]model.UserView, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userViewCols + ` FROM users u ORDER BY u.id LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, viewerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.UserView, 0, limit)
	for rows.Next() {
		v, err := scanUserView(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

// SetPassword replaces the password hash.
func (r *UserRepo) SetPassword(ctx context.Context, id int64, pwdHash string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE users SET pwd_hash=$2 WHERE id=$1`, id, pwdHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
