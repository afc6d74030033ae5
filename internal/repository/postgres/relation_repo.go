package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

// RelationRepo implements RelationRepository using PostgreSQL.
type RelationRepo struct{ db *DB }

// NewRelationRepo constructs a relation repository.
func NewRelationRepo(db *DB) *RelationRepo { return &RelationRepo{db: db} }

// collectionTable maps a collection to its join table; only these names ever reach SQL.
func collectionTable(c model.Collection) (string, error) {
	switch c {
	case model.Favorites:
		return "favorites", nil
	case model.ShoppingCart:
		return "shopping_cart", nil
	}
	return "", fmt.Errorf("unknown collection %q", c)
}

// Add inserts a (user, recipe) pair. Uniqueness is enforced by the table so a
// double submit fails atomically.
func (r *RelationRepo) Add(ctx context.Context, c model.Collection, userID, recipeID int64) error {
	table, err := collectionTable(c)
	if err != nil {
		return err
	}
	q := `INSERT INTO ` + table + ` (user_id, recipe_id) VALUES ($1, $2)`
	_, err = r.db.Pool.Exec(ctx, q, userID, recipeID)
	switch {
	case isUniqueViolation(err):
		return errs.ErrConflict
	case isFKViolation(err):
		return errs.ErrNotFound
	}
	return err
}

// Remove deletes a (user, recipe) pair.
func (r *RelationRepo) Remove(ctx context.Context, c model.Collection, userID, recipeID int64) error {
	table, err := collectionTable(c)
	if err != nil {
		return err
	}
	q := `DELETE FROM ` + table + ` WHERE user_id=$1 AND recipe_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, recipeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrConflict
	}
	return nil
}

// Subscribe inserts a (subscriber, author) pair.
func (r *RelationRepo) Subscribe(ctx context.Context, userID, authorID int64) error {
	_, err := r.db.Pool.Exec(ctx, `INSERT INTO subscriptions (user_id, author_id) VALUES ($1, $2)`, userID, authorID)
	switch {
	case isUniqueViolation(err):
		return errs.ErrConflict
	case isCheckViolation(err):
		return errs.ErrSelfReference
	case isFKViolation(err):
		return errs.ErrNotFound
	}
	return err
}

// Unsubscribe deletes a (subscriber, author) pair.
func (r *RelationRepo) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM subscriptions WHERE user_id=$1 AND author_id=$2`, userID, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrConflict
	}
	return nil
}

// Subscriptions lists followed authors in subscription order with their recipe counts.
// Recipe previews are filled in by the caller.
func (r *RelationRepo) Subscriptions(ctx context.Context, userID int64, limit, offset int) ([]model.Author, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userViewCols + `,
(SELECT COUNT(*) FROM recipes rc WHERE rc.author_id=u.id)
FROM subscriptions sub JOIN users u ON u.id=sub.author_id
WHERE sub.user_id=$1
ORDER BY sub.id
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Author, 0, limit)
	for rows.Next() {
		var a model.Author
		v := &a.UserView
		if err := rows.Scan(&v.ID, &v.Email, &v.Username, &v.FirstName, &v.LastName, &v.CreatedAt,
			&v.IsSubscribed, &a.RecipesCount); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
