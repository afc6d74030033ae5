package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/jackc/pgx/v5"
)

// ReferenceRepo implements ReferenceRepository using PostgreSQL.
type ReferenceRepo struct{ db *DB }

// NewReferenceRepo constructs a reference-data repository.
func NewReferenceRepo(db *DB) *ReferenceRepo { return &ReferenceRepo{db: db} }

// ListTags returns every tag ordered by id.
func (r *ReferenceRepo) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, color, slug FROM tags ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTag loads a tag by id.
func (r *ReferenceRepo) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	var t model.Tag
	err := r.db.Pool.QueryRow(ctx, `SELECT id, name, color, slug FROM tags WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListIngredients returns ingredients by name prefix, ordered by name.
func (r *ReferenceRepo) ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	const q = `
SELECT id, name, measurement_unit FROM ingredients
WHERE lower(name) LIKE lower($1) || '%'
ORDER BY name, id`
	rows, err := r.db.Pool.Query(ctx, q, escapeLike(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ingredient
	for rows.Next() {
		var in model.Ingredient
		if err := rows.Scan(&in.ID, &in.Name, &in.MeasurementUnit); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// GetIngredient loads an ingredient by id.
func (r *ReferenceRepo) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	var in model.Ingredient
	err := r.db.Pool.QueryRow(ctx, `SELECT id, name, measurement_unit FROM ingredients WHERE id=$1`, id).
		Scan(&in.ID, &in.Name, &in.MeasurementUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &in, nil
}

// ExistingIngredientIDs returns which of ids exist.
func (r *ReferenceRepo) ExistingIngredientIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	return r.existing(ctx, `SELECT id FROM ingredients WHERE id = ANY($1)`, ids)
}

// ExistingTagIDs returns which of ids exist.
func (r *ReferenceRepo) ExistingTagIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	return r.existing(ctx, `SELECT id FROM tags WHERE id = ANY($1)`, ids)
}

func (r *ReferenceRepo) existing(ctx context.Context, q string, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	rows, err := r.db.Pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	return found, rows.Err()
}

// InsertIngredients inserts new (name, unit) pairs in one transaction; existing pairs are skipped.
func (r *ReferenceRepo) InsertIngredients(ctx context.Context, items []model.Ingredient) (added int, err error) {
	const q = `
INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2)
ON CONFLICT (name, measurement_unit) DO NOTHING`
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, in := range items {
			tag, err := tx.Exec(ctx, q, in.Name, in.MeasurementUnit)
			if err != nil {
				return err
			}
			added += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// InsertTags inserts tags in one transaction; a tag clashing on name, color or slug is skipped.
func (r *ReferenceRepo) InsertTags(ctx context.Context, tags []model.Tag) (added int, err error) {
	const q = `INSERT INTO tags (name, color, slug) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, t := range tags {
			tag, err := tx.Exec(ctx, q, t.Name, t.Color, t.Slug)
			if err != nil {
				if isCheckViolation(err) {
					return errs.Field("slug", fmt.Errorf("%q: %w", t.Slug, errs.ErrInvalidInput))
				}
				return err
			}
			added += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
