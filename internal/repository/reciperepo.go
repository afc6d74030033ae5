package repository

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

// RecipeRepository persists recipes together with their composition.
// Create and Replace are atomic: either every composition row lands or none does.
type RecipeRepository interface {
	// Create inserts the recipe, its tag set and its ingredient rows in one transaction.
	Create(ctx context.Context, authorID int64, attrs model.RecipeAttrs, tagIDs []int64, ings []model.IngredientAmount) (int64, error)
	// Replace applies patch and, for each non-nil list, deletes and reinserts that part
	// of the composition in one transaction.
	Replace(ctx context.Context, id int64, patch model.RecipePatch, tagIDs []int64, ings []model.IngredientAmount) error
	// Delete removes a recipe; composition and relations cascade.
	Delete(ctx context.Context, id int64) error
	// AuthorOf returns the owner of a recipe.
	AuthorOf(ctx context.Context, id int64) (int64, error)
	// Get loads a fully hydrated recipe as seen by viewerID.
	Get(ctx context.Context, viewerID, id int64) (*model.Recipe, error)
	// List returns a filtered page of hydrated recipes and the total count.
	List(ctx context.Context, f model.RecipeFilter) ([]model.Recipe, int, error)
	// Short loads the compact form of a recipe.
	Short(ctx context.Context, id int64) (*model.RecipeShort, error)
	// ShortByAuthor returns up to limit newest recipes of an author (limit<=0: all).
	ShortByAuthor(ctx context.Context, authorID int64, limit int) ([]model.RecipeShort, error)
	// CartLines returns every ingredient row of every recipe in the user's cart,
	// ordered by cart entry and then by composition row.
	CartLines(ctx context.Context, userID int64) ([]model.CartLine, error)
}
