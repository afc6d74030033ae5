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

// RecipeRepo implements RecipeRepository using PostgreSQL.
type RecipeRepo struct{ db *DB }

// NewRecipeRepo constructs a recipe repository.
func NewRecipeRepo(db *DB) *RecipeRepo { return &RecipeRepo{db: db} }

const (
	insRecipe  = `INSERT INTO recipes (author_id, name, image, text, cooking_time) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	lockRecipe = `SELECT id FROM recipes WHERE id=$1 FOR UPDATE`
	updRecipe  = `UPDATE recipes SET name=COALESCE($2, name), image=COALESCE($3, image), text=COALESCE($4, text), cooking_time=COALESCE($5, cooking_time) WHERE id=$1`

	delRecipeTags = `DELETE FROM recipe_tags WHERE recipe_id=$1`
	insRecipeTags = `INSERT INTO recipe_tags (recipe_id, tag_id) SELECT $1, unnest($2::bigint[])`

	delRecipeIngredients = `DELETE FROM recipe_ingredients WHERE recipe_id=$1`
	insRecipeIngredients = `INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) SELECT $1, t.ingredient_id, t.amount FROM unnest($2::bigint[], $3::int[]) AS t(ingredient_id, amount)`
)

// Create inserts recipe, tags and ingredient rows atomically.
func (r *RecipeRepo) Create(
	ctx context.Context, authorID int64, attrs model.RecipeAttrs, tagIDs []int64, ings []model.IngredientAmount,
) (id int64, err error) {
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insRecipe, authorID, attrs.Name, attrs.Image, attrs.Text, attrs.CookingTime).Scan(&id)
		if err != nil {
			return recipeErr(err)
		}
		if err := insertTags(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		return insertIngredients(ctx, tx, id, ings)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Replace updates scalar attributes and fully replaces each supplied part of the composition.
// A nil tagIDs or ings leaves that part untouched.
func (r *RecipeRepo) Replace(
	ctx context.Context, id int64, patch model.RecipePatch, tagIDs []int64, ings []model.IngredientAmount,
) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, lockRecipe, id).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		if !patch.Empty() {
			if _, err := tx.Exec(ctx, updRecipe, id, patch.Name, patch.Image, patch.Text, patch.CookingTime); err != nil {
				return recipeErr(err)
			}
		}
		if tagIDs != nil {
			if _, err := tx.Exec(ctx, delRecipeTags, id); err != nil {
				return err
			}
			if err := insertTags(ctx, tx, id, tagIDs); err != nil {
				return err
			}
		}
		if ings != nil {
			if _, err := tx.Exec(ctx, delRecipeIngredients, id); err != nil {
				return err
			}
			if err := insertIngredients(ctx, tx, id, ings); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertTags(ctx context.Context, tx pgx.Tx, recipeID int64, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, insRecipeTags, recipeID, tagIDs); err != nil {
		return compositionErr("tags", err)
	}
	return nil
}

func insertIngredients(ctx context.Context, tx pgx.Tx, recipeID int64, ings []model.IngredientAmount) error {
	ids := make([]int64, len(ings))
	amounts := make([]int32, len(ings))
	for i, in := range ings {
		ids[i], amounts[i] = in.IngredientID, int32(in.Amount)
	}
	if _, err := tx.Exec(ctx, insRecipeIngredients, recipeID, ids, amounts); err != nil {
		return compositionErr("ingredients", err)
	}
	return nil
}

// compositionErr translates constraint violations raised by a race between
// validation and write into the taxonomy.
func compositionErr(field string, err error) error {
	switch {
	case isFKViolation(err):
		return errs.Field(field, errs.ErrUnknownReference)
	case isUniqueViolation(err):
		return errs.Field(field, errs.ErrDuplicateReference)
	case isCheckViolation(err):
		return errs.Field(field, errs.ErrOutOfRange)
	}
	return err
}

func recipeErr(err error) error {
	switch {
	case isCheckViolation(err):
		return errs.Field("cooking_time", errs.ErrOutOfRange)
	case isFKViolation(err):
		return errs.Field("author", errs.ErrUnknownReference)
	}
	return err
}

// Delete removes a recipe.
func (r *RecipeRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM recipes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AuthorOf returns the recipe owner id.
func (r *RecipeRepo) AuthorOf(ctx context.Context, id int64) (int64, error) {
	var author int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT author_id FROM recipes WHERE id=$1`, id).Scan(&author); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return author, nil
}

// recipeSelect selects a recipe, its author and the viewer flags; the viewer id is bound to $viewer.
func recipeSelect(viewer int) string {
	return fmt.Sprintf(`SELECT r.id, r.name, r.image, r.text, r.cooking_time, r.created_at,
u.id, u.email, u.username, u.first_name, u.last_name, u.created_at,
EXISTS (SELECT 1 FROM subscriptions s WHERE s.user_id=$%[1]d AND s.author_id=u.id),
EXISTS (SELECT 1 FROM favorites f WHERE f.user_id=$%[1]d AND f.recipe_id=r.id),
EXISTS (SELECT 1 FROM shopping_cart c WHERE c.user_id=$%[1]d AND c.recipe_id=r.id)
FROM recipes r JOIN users u ON u.id=r.author_id`, viewer)
}

func scanRecipe(row scanner) (model.Recipe, error) {
	var rc model.Recipe
	a := &rc.Author
	err := row.Scan(
		&rc.ID, &rc.Name, &rc.Image, &rc.Text, &rc.CookingTime, &rc.CreatedAt,
		&a.ID, &a.Email, &a.Username, &a.FirstName, &a.LastName, &a.CreatedAt,
		&a.IsSubscribed, &rc.IsFavorited, &rc.IsInShoppingCart,
	)
	return rc, err
}

// Get loads a hydrated recipe.
func (r *RecipeRepo) Get(ctx context.Context, viewerID, id int64) (*model.Recipe, error) {
	rc, err := scanRecipe(r.db.Pool.QueryRow(ctx, recipeSelect(1)+` WHERE r.id=$2`, viewerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	list := []model.Recipe{rc}
	if err := r.hydrate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// where accumulates filter conditions with positional placeholders.
type where struct {
	conds []string
	args  []any
}

// add appends cond, whose %d is replaced by the placeholder number of arg.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func recipeWhere(f model.RecipeFilter) *where {
	w := &where{}
	if f.AuthorID > 0 {
		w.add(`r.author_id=$%d`, f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		w.add(`EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id=rt.tag_id WHERE rt.recipe_id=r.id AND t.slug = ANY($%d))`, f.TagSlugs)
	}
	// collection filters only apply to authenticated viewers
	if f.ViewerID > 0 && f.IsFavorited {
		w.add(`EXISTS (SELECT 1 FROM favorites fv WHERE fv.user_id=$%d AND fv.recipe_id=r.id)`, f.ViewerID)
	}
	if f.ViewerID > 0 && f.IsInShoppingCart {
		w.add(`EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.user_id=$%d AND sc.recipe_id=r.id)`, f.ViewerID)
	}
	return w
}

// List returns hydrated recipes newest first.
func (r *RecipeRepo) List(ctx context.Context, f model.RecipeFilter) ([]model.Recipe, int, error) {
	w := recipeWhere(f)

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes r`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(w.args)
	q := recipeSelect(n+1) + w.sql() + fmt.Sprintf(` ORDER BY r.id DESC LIMIT $%d OFFSET $%d`, n+2, n+3)
	args := append(append([]any{}, w.args...), f.ViewerID, f.Limit, f.Offset)

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Recipe, 0, f.Limit)
	for rows.Next() {
		rc, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.hydrate(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// hydrate loads tags and ingredients for every recipe in list with two queries.
func (r *RecipeRepo) hydrate(ctx context.Context, list []model.Recipe) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	idx := make(map[int64]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		idx[list[i].ID] = i
		list[i].Tags = []model.Tag{}
		list[i].Ingredients = []model.RecipeIngredient{}
	}

	const qTags = `
SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
FROM recipe_tags rt JOIN tags t ON t.id=rt.tag_id
WHERE rt.recipe_id = ANY($1)
ORDER BY t.id`
	rows, err := r.db.Pool.Query(ctx, qTags, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rid int64
		var t model.Tag
		if err := rows.Scan(&rid, &t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			rows.Close()
			return err
		}
		list[idx[rid]].Tags = append(list[idx[rid]].Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const qIngs = `
SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
FROM recipe_ingredients ri JOIN ingredients i ON i.id=ri.ingredient_id
WHERE ri.recipe_id = ANY($1)
ORDER BY ri.id`
	rows, err = r.db.Pool.Query(ctx, qIngs, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rid int64
		var ri model.RecipeIngredient
		if err := rows.Scan(&rid, &ri.ID, &ri.Name, &ri.MeasurementUnit, &ri.Amount); err != nil {
			return err
		}
		list[idx[rid]].Ingredients = append(list[idx[rid]].Ingredients, ri)
	}
	return rows.Err()
}

// Short loads the compact form of a recipe.
func (r *RecipeRepo) Short(ctx context.Context, id int64) (*model.RecipeShort, error) {
	var s model.RecipeShort
	err := r.db.Pool.QueryRow(ctx, `SELECT id, name, image, cooking_time FROM recipes WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Image, &s.CookingTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ShortByAuthor returns an author's newest recipes; limit<=0 returns all of them.
func (r *RecipeRepo) ShortByAuthor(ctx context.Context, authorID int64, limit int) ([]model.RecipeShort, error) {
	const q = `
SELECT id, name, image, cooking_time FROM recipes
WHERE author_id=$1
ORDER BY id DESC
LIMIT NULLIF($2, 0)`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.Pool.Query(ctx, q, authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RecipeShort{}
	for rows.Next() {
		var s model.RecipeShort
		if err := rows.Scan(&s.ID, &s.Name, &s.Image, &s.CookingTime); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CartLines returns the ingredient rows of every recipe in the user's cart.
func (r *RecipeRepo) CartLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	const q = `
SELECT sc.recipe_id, i.name, i.measurement_unit, ri.amount
FROM shopping_cart sc
JOIN recipe_ingredients ri ON ri.recipe_id=sc.recipe_id
JOIN ingredients i ON i.id=ri.ingredient_id
WHERE sc.user_id=$1
ORDER BY sc.id, ri.id`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.RecipeID, &l.Name, &l.Unit, &l.Amount); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
